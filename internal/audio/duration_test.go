package audio

import (
	"math"
	"testing"
)

func TestProbeWAVDuration(t *testing.T) {
	const sampleRate = 16000
	// One second of PCM16 mono.
	pcm := make([]byte, sampleRate*2)
	wav, err := EncodeWAVPCM16LE(pcm, sampleRate)
	if err != nil {
		t.Fatalf("EncodeWAVPCM16LE: %v", err)
	}

	got, err := ProbeWAVDuration(wav)
	if err != nil {
		t.Fatalf("ProbeWAVDuration: %v", err)
	}
	if math.Abs(float64(got)-1.0) > 1e-6 {
		t.Fatalf("duration = %v, want 1.0", got)
	}
}

func TestProbeWAVDurationRejectsGarbage(t *testing.T) {
	if _, err := ProbeWAVDuration([]byte("not a wav file")); err != ErrNotWAV {
		t.Fatalf("got %v, want ErrNotWAV", err)
	}
	if _, err := ProbeWAVDuration(nil); err != ErrNotWAV {
		t.Fatalf("got %v, want ErrNotWAV", err)
	}
}
