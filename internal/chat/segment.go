package chat

// Segment is one ordered, emotion-tagged unit of a generated reply. The
// ordinal defines delivery order and is stable from creation to dispatch;
// synthesis only attaches the audio fields.
type Segment struct {
	Ordinal          int
	Text             string
	Emotion          string
	Audio            []byte
	AudioContentType string
	// AudioLength is the playback duration in seconds.
	AudioLength float32
}

func (s *Segment) HasText() bool  { return s.Text != "" }
func (s *Segment) HasAudio() bool { return len(s.Audio) > 0 }

// IsEmpty segments are never dispatched.
func (s *Segment) IsEmpty() bool { return !s.HasText() && !s.HasAudio() }

// Result accumulates one run's output. Cost is an explicit field read by the
// stage recorder; stages add to it as they go.
type Result struct {
	Response   string
	Segments   []*Segment
	TokensUsed int
	Cost       float64
}
