package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dayeon-dev/aria/internal/llm"
)

// GenerationSettings are the static model parameters for chat replies.
type GenerationSettings struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Generator invokes the text model and parses its reply into segments.
type Generator struct {
	client   llm.Client
	settings GenerationSettings
	logger   *slog.Logger
}

func NewGenerator(client llm.Client, settings GenerationSettings, logger *slog.Logger) *Generator {
	return &Generator{
		client:   client,
		settings: settings,
		logger:   logger.With(slog.String("component", "chat.generator")),
	}
}

func (g *Generator) Generate(ctx context.Context, pctx *Context) (*Result, error) {
	resp, err := g.client.CreateTextResponse(ctx, llm.Request{
		SystemMessage: pctx.SystemMessage,
		Instructions:  pctx.Instructions,
		UserMessage:   pctx.Command.Message,
		History:       pctx.History,
		MemoryContext: pctx.MemoryContext,
		Model:         g.settings.Model,
		MaxTokens:     g.settings.MaxTokens,
		Temperature:   g.settings.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	segments := ParseSegments(resp.Text, pctx.Voice.EmotionMap)

	result := &Result{
		Response:   resp.Text,
		Segments:   segments,
		TokensUsed: resp.TotalTokens,
		Cost:       llm.Cost(resp.Model, resp.TotalTokens),
	}

	g.logger.Debug("reply generated",
		slog.String("session_id", pctx.Command.SessionID),
		slog.Int("segments", len(segments)),
		slog.Int("tokens", resp.TotalTokens))

	return result, nil
}
