package memory

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientSearch(t *testing.T) {
	var gotPath string
	var gotReq searchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode([]SearchResult{
			{Text: "likes hiking", Score: 0.91},
			{Text: "has a cat", Score: 0.54},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	results, err := c.Search(context.Background(), "user1_char1", "what do I like", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/search" {
		t.Fatalf("path = %q, want /search", gotPath)
	}
	if gotReq.TopK != 2 {
		t.Fatalf("top_k = %d, want 2", gotReq.TopK)
	}
	if gotReq.TimeWeight != 0.3 {
		t.Fatalf("time_weight = %v, want 0.3", gotReq.TimeWeight)
	}
	if gotReq.Collection != "user1_char1" {
		t.Fatalf("collection = %q, want user1_char1", gotReq.Collection)
	}
	if len(results) != 2 || results[0].Text != "likes hiking" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestHTTPClientAdd(t *testing.T) {
	var gotPath string
	var gotReq addRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := c.Add(context.Background(), "user1_char1", "user enjoys jazz", nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if gotPath != "/insert" {
		t.Fatalf("path = %q, want /insert", gotPath)
	}
	if gotReq.Text != "user enjoys jazz" {
		t.Fatalf("text = %q", gotReq.Text)
	}
	if gotReq.Timestamp == "" {
		t.Fatal("timestamp not set")
	}
}

func TestHTTPClientSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := c.Search(context.Background(), "col", "query", 3); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestInMemoryClientSearch(t *testing.T) {
	c := NewInMemoryClient()
	ctx := context.Background()

	memories := []string{"user likes hiking", "user has a dog named rex", "user dislikes rain"}
	for _, m := range memories {
		if err := c.Add(ctx, "col", m, nil); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	results, err := c.Search(ctx, "col", "hiking", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Text != "user likes hiking" {
		t.Fatalf("unexpected results: %+v", results)
	}

	results, err = c.Search(ctx, "other", "hiking", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no hits for unknown collection, got %+v", results)
	}
}
