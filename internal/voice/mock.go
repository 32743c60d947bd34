package voice

import (
	"context"
	"sync"

	"github.com/dayeon-dev/aria/internal/audio"
)

const mockSampleRate = 16000

// MockSynthesizer produces silent WAV audio sized to a rough reading pace.
// It stands in for the speech provider in local/dev setups and tests.
type MockSynthesizer struct {
	mu sync.Mutex

	// SecondsPerChar controls the synthetic duration. Zero means the
	// default reading pace.
	SecondsPerChar float32
	Err            error

	calls int
}

func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// CallCount reports how many synthesis requests have been received.
func (m *MockSynthesizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockSynthesizer) Synthesize(_ context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	m.mu.Lock()
	m.calls++
	failErr := m.Err
	perChar := m.SecondsPerChar
	m.mu.Unlock()

	if failErr != nil {
		return nil, failErr
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if perChar == 0 {
		perChar = 0.08
	}
	duration := perChar * float32(len([]rune(req.Text)))
	if duration < 0.1 {
		duration = 0.1
	}

	pcm := make([]byte, int(duration*mockSampleRate)*2)
	wav, err := audio.EncodeWAVPCM16LE(pcm, mockSampleRate)
	if err != nil {
		return nil, err
	}
	return &SynthesisResult{
		Audio:       wav,
		ContentType: "audio/wav",
		AudioLength: duration,
	}, nil
}
