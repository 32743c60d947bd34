package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Binary message kinds. Integrated carries text and audio in one frame.
const (
	BinaryKindText       byte = 0x01
	BinaryKindAudio      byte = 0x02
	BinaryKindIntegrated byte = 0x03
)

var ErrInvalidBinaryMessage = errors.New("invalid binary message")

// IntegratedMessage is the decoded form of a combined text+audio push.
type IntegratedMessage struct {
	SessionID   string
	Text        string
	Audio       []byte
	AudioLength float32
}

// EncodeIntegrated renders an integrated message. Layout, in order:
// kind byte, length-prefixed session id, length-prefixed text (0 length when
// absent), length-prefixed audio (0 length when absent), float32 duration in
// seconds. All integers and the float are little-endian.
func EncodeIntegrated(msg IntegratedMessage) []byte {
	sessionID := []byte(msg.SessionID)
	text := []byte(msg.Text)

	size := 1 + 4 + len(sessionID) + 4 + len(text) + 4 + len(msg.Audio) + 4
	buf := bytes.NewBuffer(make([]byte, 0, size))

	buf.WriteByte(BinaryKindIntegrated)
	writeChunk(buf, sessionID)
	writeChunk(buf, text)
	writeChunk(buf, msg.Audio)

	var dur [4]byte
	binary.LittleEndian.PutUint32(dur[:], math.Float32bits(msg.AudioLength))
	buf.Write(dur[:])

	return buf.Bytes()
}

// DecodeIntegrated parses a frame produced by EncodeIntegrated.
func DecodeIntegrated(data []byte) (IntegratedMessage, error) {
	if len(data) < 1 || data[0] != BinaryKindIntegrated {
		return IntegratedMessage{}, fmt.Errorf("%w: bad kind", ErrInvalidBinaryMessage)
	}
	rest := data[1:]

	sessionID, rest, err := readChunk(rest)
	if err != nil {
		return IntegratedMessage{}, fmt.Errorf("%w: session id", ErrInvalidBinaryMessage)
	}
	text, rest, err := readChunk(rest)
	if err != nil {
		return IntegratedMessage{}, fmt.Errorf("%w: text", ErrInvalidBinaryMessage)
	}
	audio, rest, err := readChunk(rest)
	if err != nil {
		return IntegratedMessage{}, fmt.Errorf("%w: audio", ErrInvalidBinaryMessage)
	}
	if len(rest) < 4 {
		return IntegratedMessage{}, fmt.Errorf("%w: duration", ErrInvalidBinaryMessage)
	}

	msg := IntegratedMessage{
		SessionID:   string(sessionID),
		Text:        string(text),
		AudioLength: math.Float32frombits(binary.LittleEndian.Uint32(rest[:4])),
	}
	if len(audio) > 0 {
		msg.Audio = audio
	}
	return msg, nil
}

func writeChunk(buf *bytes.Buffer, b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	buf.Write(n[:])
	buf.Write(b)
}

func readChunk(data []byte) (chunk, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, ErrInvalidBinaryMessage
	}
	n := binary.LittleEndian.Uint32(data[:4])
	data = data[4:]
	if uint32(len(data)) < n {
		return nil, nil, ErrInvalidBinaryMessage
	}
	return data[:n], data[n:], nil
}
