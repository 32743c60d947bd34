package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dayeon-dev/aria/internal/character"
	"github.com/dayeon-dev/aria/internal/session"
	"github.com/dayeon-dev/aria/internal/user"
)

// Validator checks the referential integrity of a command before any
// expensive work starts.
type Validator struct {
	sessions   session.Store
	users      user.Store
	characters character.Store
	logger     *slog.Logger
}

func NewValidator(sessions session.Store, users user.Store, characters character.Store, logger *slog.Logger) *Validator {
	return &Validator{
		sessions:   sessions,
		users:      users,
		characters: characters,
		logger:     logger.With(slog.String("component", "chat.validator")),
	}
}

// Validate fails fast on the first broken reference. Order is fixed:
// session, then user, then character.
func (v *Validator) Validate(ctx context.Context, cmd Command) error {
	if cmd.Message == "" {
		return ErrEmptyMessage
	}

	if cmd.SessionID != "" {
		ok, err := v.sessions.Exists(ctx, cmd.SessionID)
		if err != nil {
			return fmt.Errorf("check session: %w", err)
		}
		if !ok {
			v.logger.Warn("unknown session", slog.String("session_id", cmd.SessionID))
			return ErrInvalidSession
		}
	}

	ok, err := v.users.Exists(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		v.logger.Warn("unknown user", slog.String("user_id", cmd.UserID))
		return ErrUserNotFound
	}

	ok, err = v.characters.Exists(ctx, cmd.CharacterID)
	if err != nil {
		return fmt.Errorf("check character: %w", err)
	}
	if !ok {
		v.logger.Warn("unknown character", slog.String("character_id", cmd.CharacterID))
		return ErrCharacterNotFound
	}
	return nil
}
