package llm

import "context"

// Roles accepted in a chat request history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Default generation settings when a request leaves them unset.
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

// HistoryMessage is one prior conversational turn.
type HistoryMessage struct {
	Role    string
	Content string
}

// Request describes a single text generation call. SystemMessage sets the
// persona, Instructions carries output format rules, MemoryContext holds
// retrieved long-term memories.
type Request struct {
	SystemMessage string
	Instructions  string
	UserMessage   string
	History       []HistoryMessage
	MemoryContext []string
	Model         string
	MaxTokens     int
	Temperature   float64
}

// Response is the generated reply with token accounting.
type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Client generates a chat reply. Implementations must be safe for
// concurrent use.
type Client interface {
	CreateTextResponse(ctx context.Context, req Request) (*Response, error)
}

func (r *Request) withDefaults() Request {
	out := *r
	if out.Model == "" {
		out.Model = DefaultModel
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	if out.Temperature <= 0 {
		out.Temperature = DefaultTemperature
	}
	return out
}
