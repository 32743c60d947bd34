package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dayeon-dev/aria/internal/protocol"
	"github.com/dayeon-dev/aria/internal/session"
)

// Dispatcher pushes finished segments to the client through the registry.
// By the time generation finishes the client may legitimately be gone, so
// every send failure is logged and accepted.
type Dispatcher struct {
	registry *session.Registry
	logger   *slog.Logger
}

func NewDispatcher(registry *session.Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger.With(slog.String("component", "chat.dispatcher")),
	}
}

// Dispatch sends segments strictly by ordinal, skipping empty ones. Text
// goes out as a JSON chat envelope; audio follows as a binary integrated
// message.
func (d *Dispatcher) Dispatch(ctx context.Context, pctx *Context, result *Result) {
	sessionID := pctx.Command.SessionID
	for _, seg := range result.Segments {
		if seg.IsEmpty() {
			continue
		}

		if seg.HasText() {
			env, err := protocol.NewEnvelope(protocol.TypeChat, protocol.IntegratedChatData{
				SessionID:   sessionID,
				Text:        seg.Text,
				AudioFormat: seg.AudioContentType,
				AudioLength: seg.AudioLength,
				TimestampMS: time.Now().UTC().UnixMilli(),
			})
			if err != nil {
				d.logger.Warn("failed to encode segment envelope",
					slog.String("session_id", sessionID), slog.Int("ordinal", seg.Ordinal), slog.Any("error", err))
			} else if raw, err := json.Marshal(env); err != nil {
				d.logger.Warn("failed to encode segment envelope",
					slog.String("session_id", sessionID), slog.Int("ordinal", seg.Ordinal), slog.Any("error", err))
			} else if err := d.registry.SendText(ctx, sessionID, string(raw)); err != nil {
				d.logger.Warn("segment text dropped",
					slog.String("session_id", sessionID), slog.Int("ordinal", seg.Ordinal), slog.Any("error", err))
			}
		}

		if seg.HasAudio() {
			payload := protocol.EncodeIntegrated(protocol.IntegratedMessage{
				SessionID:   sessionID,
				Text:        seg.Text,
				Audio:       seg.Audio,
				AudioLength: seg.AudioLength,
			})
			if err := d.registry.SendBinary(ctx, sessionID, payload); err != nil {
				d.logger.Warn("segment audio dropped",
					slog.String("session_id", sessionID), slog.Int("ordinal", seg.Ordinal), slog.Any("error", err))
			}
		}
	}
}
