package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewOpenAIClient(baseURL, apiKey string, logger *slog.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("llm base url is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("llm api key is required")
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: normalizeAPIBase(baseURL),
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger.With(slog.String("component", "llm")),
	}, nil
}

func normalizeAPIBase(baseURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) CreateTextResponse(ctx context.Context, req Request) (*Response, error) {
	req = req.withDefaults()

	payload := chatCompletionRequest{
		Model:       req.Model,
		Messages:    buildMessages(req),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	// One attempt per run; the pipeline never retries remote calls.
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("llm http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("llm decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	c.logger.Debug("completion done",
		slog.String("model", req.Model),
		slog.Int("total_tokens", decoded.Usage.TotalTokens),
		slog.Duration("elapsed", time.Since(start)))

	return &Response{
		Text:         decoded.Choices[0].Message.Content,
		Model:        req.Model,
		InputTokens:  decoded.Usage.PromptTokens,
		OutputTokens: decoded.Usage.CompletionTokens,
		TotalTokens:  decoded.Usage.TotalTokens,
	}, nil
}

// buildMessages flattens the structured request into the chat message list:
// persona and instruction blocks first, then retrieved memories, then the
// conversation window, then the live user message.
func buildMessages(req Request) []chatMessage {
	msgs := make([]chatMessage, 0, len(req.History)+4)

	if req.SystemMessage != "" {
		msgs = append(msgs, chatMessage{Role: RoleSystem, Content: req.SystemMessage})
	}
	if req.Instructions != "" {
		msgs = append(msgs, chatMessage{Role: RoleSystem, Content: req.Instructions})
	}
	if len(req.MemoryContext) > 0 {
		var b strings.Builder
		b.WriteString("Relevant memories about the user:\n")
		for _, m := range req.MemoryContext {
			b.WriteString("- ")
			b.WriteString(m)
			b.WriteString("\n")
		}
		msgs = append(msgs, chatMessage{Role: RoleSystem, Content: strings.TrimRight(b.String(), "\n")})
	}
	for _, h := range req.History {
		role := h.Role
		if role != RoleAssistant {
			role = RoleUser
		}
		msgs = append(msgs, chatMessage{Role: role, Content: h.Content})
	}
	msgs = append(msgs, chatMessage{Role: RoleUser, Content: req.UserMessage})
	return msgs
}
