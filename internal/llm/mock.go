package llm

import (
	"context"
	"sync"
)

// MockClient returns canned replies for local development and tests.
type MockClient struct {
	Reply  string
	Tokens int
	Err    error

	mu      sync.Mutex
	calls   int
	lastReq Request
}

func NewMockClient(reply string, tokens int) *MockClient {
	return &MockClient{Reply: reply, Tokens: tokens}
}

// CallCount reports how many completion requests have been received.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recently received request.
func (m *MockClient) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

func (m *MockClient) CreateTextResponse(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls++
	m.lastReq = req
	failErr := m.Err
	m.mu.Unlock()

	if failErr != nil {
		return nil, failErr
	}
	req = req.withDefaults()
	return &Response{
		Text:         m.Reply,
		Model:        req.Model,
		InputTokens:  m.Tokens / 2,
		OutputTokens: m.Tokens - m.Tokens/2,
		TotalTokens:  m.Tokens,
	}, nil
}
