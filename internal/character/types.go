package character

import "time"

// Character is an AI persona a user can talk to. Persona fields feed the
// generation system prompt; VoiceName selects the synthesis voice.
type Character struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Role        string    `json:"role"`
	Personality string    `json:"personality"`
	SpeechStyle string    `json:"speech_style"`
	VoiceName   string    `json:"voice_name"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
