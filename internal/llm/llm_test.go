package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestCost(t *testing.T) {
	cases := []struct {
		model  string
		tokens int
		want   float64
	}{
		{"gpt-4o-mini", 1_000_000, 0.75},
		{"gpt-4o", 500_000, 6.25},
		{"gpt-4o-mini", 0, 0},
		{"no-such-model", 1_000_000, 0.75},
	}
	for _, tc := range cases {
		got := Cost(tc.model, tc.tokens)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Cost(%q, %d) = %v, want %v", tc.model, tc.tokens, got, tc.want)
		}
	}
}

func TestOpenAIClientCreateTextResponse(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq chatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		io.WriteString(w, `{
			"choices": [{"finish_reason": "stop", "message": {"content": "[happy] hi there!"}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
		}`)
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(srv.URL, "test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}

	resp, err := c.CreateTextResponse(context.Background(), Request{
		SystemMessage: "You are Mika.",
		Instructions:  "Tag segments with emotions.",
		UserMessage:   "hello",
		History: []HistoryMessage{
			{Role: RoleUser, Content: "earlier question"},
			{Role: RoleAssistant, Content: "earlier answer"},
		},
		MemoryContext: []string{"user likes jazz"},
	})
	if err != nil {
		t.Fatalf("CreateTextResponse: %v", err)
	}

	if gotPath != "/v1/chat/completions" {
		t.Fatalf("path = %q, want /v1/chat/completions", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotReq.Model != DefaultModel {
		t.Fatalf("model = %q, want %q", gotReq.Model, DefaultModel)
	}
	// system + instructions + memories + 2 history + user
	if len(gotReq.Messages) != 6 {
		t.Fatalf("len(messages) = %d, want 6", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != RoleSystem || gotReq.Messages[5].Content != "hello" {
		t.Fatalf("unexpected message layout: %+v", gotReq.Messages)
	}
	if resp.Text != "[happy] hi there!" {
		t.Fatalf("text = %q", resp.Text)
	}
	if resp.TotalTokens != 150 {
		t.Fatalf("total tokens = %d, want 150", resp.TotalTokens)
	}
}

func TestOpenAIClientHTTPError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(srv.URL, "test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	if _, err := c.CreateTextResponse(context.Background(), Request{UserMessage: "hi"}); err == nil {
		t.Fatal("expected error on 429 response")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (remote calls are single-attempt)", calls)
	}
}

func TestMockClientConcurrentCalls(t *testing.T) {
	// All pool workers share one client instance.
	c := NewMockClient("[neutral] hi", 10)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.CreateTextResponse(context.Background(), Request{UserMessage: "hello"}); err != nil {
				t.Errorf("CreateTextResponse: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := c.CallCount(); got != 8 {
		t.Fatalf("call count = %d, want 8", got)
	}
	if got := c.LastRequest().UserMessage; got != "hello" {
		t.Fatalf("last request message = %q, want %q", got, "hello")
	}
}

func TestNormalizeAPIBase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://api.openai.com", "https://api.openai.com/v1"},
		{"https://api.openai.com/v1", "https://api.openai.com/v1"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1"},
		{" http://localhost:8080 ", "http://localhost:8080/v1"},
	}
	for _, tc := range cases {
		if got := normalizeAPIBase(tc.in); got != tc.want {
			t.Errorf("normalizeAPIBase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
