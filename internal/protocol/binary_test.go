package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestIntegratedRoundTrip(t *testing.T) {
	in := IntegratedMessage{
		SessionID:   "s1",
		Text:        "hello",
		Audio:       []byte{1, 2, 3},
		AudioLength: 1.5,
	}

	out, err := DecodeIntegrated(EncodeIntegrated(in))
	if err != nil {
		t.Fatalf("DecodeIntegrated() error = %v", err)
	}
	if out.SessionID != "s1" {
		t.Fatalf("session id = %q, want %q", out.SessionID, "s1")
	}
	if out.Text != "hello" {
		t.Fatalf("text = %q, want %q", out.Text, "hello")
	}
	if !bytes.Equal(out.Audio, []byte{1, 2, 3}) {
		t.Fatalf("audio = %v, want [1 2 3]", out.Audio)
	}
	if out.AudioLength != 1.5 {
		t.Fatalf("audio length = %v, want 1.5", out.AudioLength)
	}
}

func TestIntegratedRoundTripTextOnly(t *testing.T) {
	out, err := DecodeIntegrated(EncodeIntegrated(IntegratedMessage{SessionID: "s2", Text: "only text"}))
	if err != nil {
		t.Fatalf("DecodeIntegrated() error = %v", err)
	}
	if out.Audio != nil {
		t.Fatalf("audio = %v, want nil", out.Audio)
	}
	if out.AudioLength != 0 {
		t.Fatalf("audio length = %v, want 0", out.AudioLength)
	}
}

func TestDecodeIntegratedRejectsWrongKind(t *testing.T) {
	frame := EncodeIntegrated(IntegratedMessage{SessionID: "s1"})
	frame[0] = BinaryKindText
	if _, err := DecodeIntegrated(frame); !errors.Is(err, ErrInvalidBinaryMessage) {
		t.Fatalf("error = %v, want ErrInvalidBinaryMessage", err)
	}
}

func TestDecodeIntegratedRejectsTruncatedFrame(t *testing.T) {
	frame := EncodeIntegrated(IntegratedMessage{SessionID: "s1", Text: "hi"})
	for cut := 1; cut < len(frame); cut += 3 {
		if _, err := DecodeIntegrated(frame[:cut]); err == nil {
			t.Fatalf("expected error decoding %d-byte prefix", cut)
		}
	}
}
