package memory

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

// SearchResult is a single long-term memory hit with its similarity score.
type SearchResult struct {
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// Client talks to the long-term memory service. Collections partition
// memories per user/character pair.
type Client interface {
	Add(ctx context.Context, collection, text string, metadata map[string]string) error
	Search(ctx context.Context, collection, query string, topK int) ([]SearchResult, error)
}

type addRequest struct {
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata"`
	Timestamp  string            `json:"timestamp"`
	Collection string            `json:"collection"`
}

type searchRequest struct {
	Query         string  `json:"query"`
	TopK          int     `json:"top_k"`
	TimeWeight    float32 `json:"time_weight"`
	ReferenceTime string  `json:"reference_time"`
	Collection    string  `json:"collection"`
}

// HTTPClient is the vector memory store client.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewHTTPClient(baseURL string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger.With(slog.String("component", "memory")),
	}
}

func (c *HTTPClient) Add(ctx context.Context, collection, text string, metadata map[string]string) error {
	if metadata == nil {
		metadata = map[string]string{}
	}
	req := addRequest{
		Text:       text,
		Metadata:   metadata,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Collection: collection,
	}
	if err := c.post(ctx, "/insert", req, nil); err != nil {
		return fmt.Errorf("memory insert: %w", err)
	}
	return nil
}

// Search performs a time-weighted similarity search and returns up to topK
// hits, best first.
func (c *HTTPClient) Search(ctx context.Context, collection, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 3
	}
	req := searchRequest{
		Query:         query,
		TopK:          topK,
		TimeWeight:    0.3,
		ReferenceTime: time.Now().UTC().Format(time.RFC3339Nano),
		Collection:    collection,
	}
	var results []SearchResult
	if err := c.post(ctx, "/search", req, &results); err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}
	c.logger.Debug("memory search done",
		slog.String("collection", collection),
		slog.Int("results", len(results)))
	return results, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
