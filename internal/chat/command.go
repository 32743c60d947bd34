package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Command is one accepted chat submission. Immutable once validated; the
// pipeline carries derived state in Context instead of mutating the command.
type Command struct {
	RequestID   string
	SessionID   string
	UserID      string
	CharacterID string
	Message     string
	Action      string
	UseVoice    bool
	SubmittedAt time.Time
}

func NewCommand(sessionID, userID, characterID, message, action string, useVoice bool) Command {
	return Command{
		RequestID:   uuid.NewString(),
		SessionID:   strings.TrimSpace(sessionID),
		UserID:      strings.TrimSpace(userID),
		CharacterID: strings.TrimSpace(characterID),
		Message:     strings.TrimSpace(message),
		Action:      strings.TrimSpace(action),
		UseVoice:    useVoice,
		SubmittedAt: time.Now().UTC(),
	}
}
