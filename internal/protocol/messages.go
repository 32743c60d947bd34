package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket envelope payload variants.
type MessageType string

const (
	TypeSession MessageType = "session"
	TypePing    MessageType = "ping"
	TypePong    MessageType = "pong"
	TypeChat    MessageType = "chat"
	TypeError   MessageType = "error"
)

var ErrUnsupportedType = errors.New("unsupported message type")

// Envelope is the JSON control/chat frame exchanged over the persistent
// connection: {"type": "...", "data": ...}.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an outbound envelope.
func NewEnvelope(t MessageType, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Type: t}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s data: %w", t, err)
	}
	return Envelope{Type: t, Data: raw}, nil
}

// SessionData announces the assigned session identifier to the client.
type SessionData struct {
	SessionID string `json:"session_id"`
}

// ErrorData carries a service error message to the client.
type ErrorData struct {
	Message string `json:"message"`
}

// ChatData is an inbound chat submission carried over the websocket channel.
// The REST request channel accepts the same shape.
type ChatData struct {
	SessionID   string `json:"session_id,omitempty"`
	UserID      string `json:"user_id"`
	CharacterID string `json:"character_id"`
	Message     string `json:"message"`
	Action      string `json:"action,omitempty"`
	UseVoice    bool   `json:"use_voice"`
}

// IntegratedChatData is the JSON form of a combined text+audio segment push.
// Audio travels base64-encoded; the binary integrated message is the compact
// alternative.
type IntegratedChatData struct {
	SessionID   string  `json:"session_id"`
	Text        string  `json:"text,omitempty"`
	AudioBase64 string  `json:"audio_data,omitempty"`
	AudioFormat string  `json:"audio_format,omitempty"`
	AudioLength float32 `json:"audio_length,omitempty"`
	TimestampMS int64   `json:"ts_ms"`
}

// ParseClientMessage decodes an inbound envelope and validates the variants a
// client is allowed to send.
func ParseClientMessage(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypePing, TypePong:
		return env, nil
	case TypeChat:
		var data ChatData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return Envelope{}, fmt.Errorf("invalid chat data: %w", err)
		}
		if data.UserID == "" || data.CharacterID == "" || data.Message == "" {
			return Envelope{}, errors.New("chat data requires user_id, character_id and message")
		}
		return env, nil
	default:
		return Envelope{}, ErrUnsupportedType
	}
}
