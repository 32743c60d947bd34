package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Info is the durable session record, independent of the live transport.
type Info struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id,omitempty"`
	ClientIP    string    `json:"client_ip,omitempty"`
	ClientPort  int       `json:"client_port,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Conn is a live transport handle. It owns no business state; the registry
// entry for its session owns the handle exclusively.
type Conn interface {
	SendText(ctx context.Context, text string) error
	SendBinary(ctx context.Context, data []byte) error
	UserID() string
	Close() error
}

// GenerateID creates a session identifier for clients that did not supply
// one: timestamp plus a random suffix to avoid collisions.
func GenerateID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("session_%d_%s", time.Now().UTC().UnixNano(), suffix)
}
