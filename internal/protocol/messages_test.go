package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseClientMessageChat(t *testing.T) {
	raw := []byte(`{"type":"chat","data":{"session_id":"s1","user_id":"u1","character_id":"c1","message":"hi","use_voice":true}}`)
	env, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if env.Type != TypeChat {
		t.Fatalf("type = %q, want %q", env.Type, TypeChat)
	}

	var data ChatData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal chat data: %v", err)
	}
	if data.SessionID != "s1" || data.UserID != "u1" || data.CharacterID != "c1" || !data.UseVoice {
		t.Fatalf("unexpected chat data: %+v", data)
	}
}

func TestParseClientMessagePing(t *testing.T) {
	env, err := ParseClientMessage([]byte(`{"type":"ping"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if env.Type != TypePing {
		t.Fatalf("type = %q, want %q", env.Type, TypePing)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsIncompleteChat(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"chat","data":{"user_id":"u1","message":""}}`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNewEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(TypeSession, SessionData{SessionID: "abc"})
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	var data SessionData
	if err := json.Unmarshal(decoded.Data, &data); err != nil {
		t.Fatalf("unmarshal session data: %v", err)
	}
	if data.SessionID != "abc" {
		t.Fatalf("session_id = %q, want %q", data.SessionID, "abc")
	}
}
