package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process history store for local/dev use.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]Message
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{messages: make(map[string][]Message)}
}

func (s *InMemoryStore) Append(_ context.Context, userID, characterID, role, content string) error {
	msg := Message{
		ID:          uuid.NewString(),
		UserID:      userID,
		CharacterID: characterID,
		Role:        role,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(userID, characterID)
	s.messages[key] = append(s.messages[key], msg)
	return nil
}

// Recent returns the newest limit messages in chronological order.
func (s *InMemoryStore) Recent(_ context.Context, userID, characterID string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.messages[pairKey(userID, characterID)]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Message, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }

func pairKey(userID, characterID string) string {
	return userID + "/" + characterID
}
