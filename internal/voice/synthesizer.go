package voice

import (
	"context"
	"errors"
)

// MaxTextLength is the provider's per-request text limit in characters.
const MaxTextLength = 300

var (
	ErrEmptyText    = errors.New("voice: text is empty")
	ErrTextTooLong  = errors.New("voice: text exceeds provider limit")
	ErrUnknownVoice = errors.New("voice: unknown voice name")
)

// SynthesisRequest asks for one segment of speech.
type SynthesisRequest struct {
	Profile  *Profile
	Text     string
	Style    string
	Language string
}

// SynthesisResult is the rendered audio for one segment.
type SynthesisResult struct {
	Audio       []byte
	ContentType string
	// AudioLength is the playback duration in seconds.
	AudioLength float32
}

// Synthesizer renders text to speech. Implementations must be safe for
// concurrent use; segments of one reply are synthesized in parallel.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
}

func validateRequest(req SynthesisRequest) error {
	if req.Profile == nil {
		return ErrUnknownVoice
	}
	if len(req.Text) == 0 {
		return ErrEmptyText
	}
	if len([]rune(req.Text)) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}
