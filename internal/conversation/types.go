package conversation

import (
	"context"
	"strings"
	"time"
)

// Roles of a conversation message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message stores a single user or assistant conversational turn between one
// user and one character.
type Message struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CharacterID string    `json:"character_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists and retrieves conversation history.
type Store interface {
	Append(ctx context.Context, userID, characterID, role, content string) error
	Recent(ctx context.Context, userID, characterID string, limit int) ([]Message, error)
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise
// in-memory.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
