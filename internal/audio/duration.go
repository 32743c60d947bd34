package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var ErrNotWAV = errors.New("audio: not a RIFF/WAVE stream")

// ProbeWAVDuration reads a WAV header and returns the playback duration in
// seconds. It walks the chunk list so streams with extra chunks before the
// data chunk still probe correctly.
func ProbeWAVDuration(data []byte) (float32, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return 0, ErrNotWAV
	}

	var byteRate uint32
	var dataSize uint32
	off := 12
	for off+8 <= len(data) {
		id := data[off : off+4]
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		body := off + 8
		switch {
		case bytes.Equal(id, []byte("fmt ")):
			if body+16 > len(data) {
				return 0, ErrNotWAV
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case bytes.Equal(id, []byte("data")):
			dataSize = size
		}
		// Chunks are word-aligned.
		off = body + int(size)
		if size%2 == 1 {
			off++
		}
	}

	if byteRate == 0 || dataSize == 0 {
		return 0, ErrNotWAV
	}
	return float32(dataSize) / float32(byteRate), nil
}
