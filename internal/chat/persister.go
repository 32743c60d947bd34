package chat

import (
	"context"
	"log/slog"

	"github.com/dayeon-dev/aria/internal/conversation"
	"github.com/dayeon-dev/aria/internal/memory"
	"github.com/dayeon-dev/aria/internal/policy"
)

// Persister writes the exchange to conversation history and long-term
// memory. A storage outage must not prevent delivery, so every failure here
// is logged and swallowed.
type Persister struct {
	history  conversation.Store
	memories memory.Client
	logger   *slog.Logger
}

func NewPersister(history conversation.Store, memories memory.Client, logger *slog.Logger) *Persister {
	return &Persister{
		history:  history,
		memories: memories,
		logger:   logger.With(slog.String("component", "chat.persister")),
	}
}

func (p *Persister) Persist(ctx context.Context, pctx *Context, result *Result) {
	cmd := pctx.Command

	if err := p.history.Append(ctx, cmd.UserID, cmd.CharacterID, conversation.RoleUser, cmd.Message); err != nil {
		p.logger.Warn("failed to persist user message",
			slog.String("session_id", cmd.SessionID), slog.Any("error", err))
	}
	if err := p.history.Append(ctx, cmd.UserID, cmd.CharacterID, conversation.RoleAssistant, result.Response); err != nil {
		p.logger.Warn("failed to persist assistant reply",
			slog.String("session_id", cmd.SessionID), slog.Any("error", err))
	}

	// Long-term memory outlives the conversation; strip raw PII before it
	// reaches the external store.
	userText, redacted := policy.RedactPII(cmd.Message)
	if redacted {
		p.logger.Info("redacted pii from memory write", slog.String("session_id", cmd.SessionID))
	}
	if err := p.memories.Add(ctx, pctx.MemoryCollection, userText, nil); err != nil {
		p.logger.Warn("failed to store user message in memory",
			slog.String("session_id", cmd.SessionID), slog.Any("error", err))
	}
	if err := p.memories.Add(ctx, pctx.MemoryCollection, result.Response, nil); err != nil {
		p.logger.Warn("failed to store reply in memory",
			slog.String("session_id", cmd.SessionID), slog.Any("error", err))
	}
}
