package conversation

import (
	"context"
	"testing"
)

func TestInMemoryStoreAppendAndRecent(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	turns := []struct {
		role    string
		content string
	}{
		{RoleUser, "hi"},
		{RoleAssistant, "hello there"},
		{RoleUser, "how are you"},
		{RoleAssistant, "doing great"},
	}
	for _, turn := range turns {
		if err := s.Append(ctx, "u1", "c1", turn.role, turn.content); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Recent(ctx, "u1", "c1", 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if got[0].Content != "hello there" || got[2].Content != "doing great" {
		t.Fatalf("unexpected window: first=%q last=%q", got[0].Content, got[2].Content)
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.Before(got[i-1].CreatedAt) {
			t.Fatalf("messages out of chronological order at %d", i)
		}
	}
}

func TestInMemoryStoreRecentIsolatesPairs(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if err := s.Append(ctx, "u1", "c1", RoleUser, "for c1"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, "u1", "c2", RoleUser, "for c2"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.Recent(ctx, "u1", "c2", 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Content != "for c2" {
		t.Fatalf("got %+v, want single c2 message", got)
	}
}

func TestInMemoryStoreRecentEmpty(t *testing.T) {
	s := NewInMemoryStore()
	got, err := s.Recent(context.Background(), "nobody", "nothing", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(got) = %d, want 0", len(got))
	}
}
