package chat

import "errors"

// Validation and configuration errors abort a run before any remote call.
var (
	ErrInvalidSession    = errors.New("chat: session does not exist")
	ErrUserNotFound      = errors.New("chat: user does not exist")
	ErrCharacterNotFound = errors.New("chat: character does not exist")
	ErrUnsupportedVoice  = errors.New("chat: character voice not in catalog")
	ErrEmptyMessage      = errors.New("chat: message is empty")
)
