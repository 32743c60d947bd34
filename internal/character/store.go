package character

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("character not found")

// Store persists characters. The chat pipeline only consumes Get and Exists;
// the remaining operations back the management REST endpoints.
type Store interface {
	Create(ctx context.Context, c Character) (Character, error)
	Get(ctx context.Context, id string) (Character, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, c Character) (Character, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Character, error)
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise
// in-memory.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}

// InMemoryStore is a process-local store for local/dev use.
type InMemoryStore struct {
	mu         sync.RWMutex
	characters map[string]Character
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{characters: make(map[string]Character)}
}

func (s *InMemoryStore) Create(_ context.Context, c Character) (Character, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return Character{}, ErrNotFound
	}
	return c, nil
}

// Exists reports whether an active character with this id is stored.
func (s *InMemoryStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	return ok && c.IsActive, nil
}

func (s *InMemoryStore) Update(_ context.Context, c Character) (Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.characters[c.ID]
	if !ok {
		return Character{}, ErrNotFound
	}
	c.CreatedAt = prev.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.characters[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		return ErrNotFound
	}
	delete(s.characters, id)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Character, 0, len(s.characters))
	for _, c := range s.characters {
		out = append(out, c)
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
