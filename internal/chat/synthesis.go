package chat

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/dayeon-dev/aria/internal/voice"
)

// SynthesisCoordinator renders audio for each text segment. All segments of
// one reply are synthesized concurrently; results are applied back by
// ordinal after every call has settled.
type SynthesisCoordinator struct {
	synth  voice.Synthesizer
	logger *slog.Logger
}

func NewSynthesisCoordinator(synth voice.Synthesizer, logger *slog.Logger) *SynthesisCoordinator {
	return &SynthesisCoordinator{
		synth:  synth,
		logger: logger.With(slog.String("component", "chat.synthesis")),
	}
}

type synthesisOutcome struct {
	result *voice.SynthesisResult
	err    error
}

// Apply attaches audio to the result's segments in place. A failed segment
// keeps its text and loses only the audio fields; a single failure never
// aborts the response.
func (c *SynthesisCoordinator) Apply(ctx context.Context, pctx *Context, result *Result) {
	if !pctx.Command.UseVoice || len(result.Segments) == 0 {
		return
	}

	outcomes := make([]*synthesisOutcome, len(result.Segments))
	var wg sync.WaitGroup
	for i, seg := range result.Segments {
		if !seg.HasText() {
			continue
		}

		style, supported := pctx.Voice.ResolveStyle(seg.Emotion)
		if !supported {
			c.logger.Warn("emotion not supported by voice, using default style",
				slog.String("session_id", pctx.Command.SessionID),
				slog.String("voice", pctx.Voice.Name),
				slog.String("emotion", seg.Emotion),
				slog.Int("ordinal", seg.Ordinal))
		}

		wg.Add(1)
		go func(ordinal int, text, style string) {
			defer wg.Done()
			res, err := c.synth.Synthesize(ctx, voice.SynthesisRequest{
				Profile: pctx.Voice,
				Text:    text,
				Style:   style,
			})
			outcomes[ordinal] = &synthesisOutcome{result: res, err: err}
		}(i, seg.Text, style)
	}
	wg.Wait()

	for ordinal, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		if outcome.err != nil {
			c.logger.Warn("segment synthesis failed, dispatching text only",
				slog.String("session_id", pctx.Command.SessionID),
				slog.Int("ordinal", ordinal),
				slog.Any("error", outcome.err))
			continue
		}
		seg := result.Segments[ordinal]
		seg.Audio = outcome.result.Audio
		seg.AudioContentType = outcome.result.ContentType
		seg.AudioLength = outcome.result.AudioLength
		if seg.AudioLength > 0 {
			// One cost unit per started 0.1 second. The duration is read
			// on a millisecond grid so an exact multiple of 0.1 is not
			// pushed into the next unit by float32 noise.
			result.Cost += math.Ceil(math.Round(float64(seg.AudioLength)*1000) / 100)
		}
	}
}
