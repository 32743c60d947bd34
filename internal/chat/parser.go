package chat

import (
	"regexp"
	"strings"
)

// NeutralEmotion tags untagged replies and is the fallback style.
const NeutralEmotion = "neutral"

// SupportedEmotions is the generation-time emotion vocabulary offered to the
// model. Voices narrow it down via their style sets.
var SupportedEmotions = []string{
	"neutral", "happy", "sad", "angry", "shy", "surprised", "embarrassed", "painful", "sleepy",
}

var segmentPattern = regexp.MustCompile(`\[(.*?)\]\s*([^\[]+)`)

// ParseSegments splits a raw model reply into ordered emotion-tagged
// segments using the bracket convention "[emotion] text [emotion] text".
// A reply without tags becomes a single neutral segment. Consecutive
// segments with identical text are dropped, case-insensitive, to absorb
// model repetition artifacts. emotionMap translates tags into the active
// voice's vocabulary; unmapped tags pass through unchanged.
func ParseSegments(raw string, emotionMap map[string]string) []*Segment {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	matches := segmentPattern.FindAllStringSubmatch(trimmed, -1)
	if len(matches) == 0 {
		return []*Segment{{Ordinal: 0, Text: trimmed, Emotion: NeutralEmotion}}
	}

	segments := make([]*Segment, 0, len(matches))
	prevText := ""
	for _, m := range matches {
		emotion := strings.ToLower(strings.TrimSpace(m[1]))
		if emotion == "" {
			emotion = NeutralEmotion
		}
		if mapped, ok := emotionMap[emotion]; ok {
			emotion = mapped
		}
		text := strings.TrimSpace(m[2])
		if text == "" {
			continue
		}
		if prevText != "" && strings.EqualFold(text, prevText) {
			continue
		}
		segments = append(segments, &Segment{
			Ordinal: len(segments),
			Text:    text,
			Emotion: emotion,
		})
		prevText = text
	}
	return segments
}
