package memory

import (
	"context"
	"strings"
	"sync"
)

// InMemoryClient keeps memories in-process. It stands in for the vector
// store in local/dev setups and matches by naive substring overlap instead
// of embeddings.
type InMemoryClient struct {
	mu          sync.RWMutex
	collections map[string][]string
}

func NewInMemoryClient() *InMemoryClient {
	return &InMemoryClient{collections: make(map[string][]string)}
}

func (c *InMemoryClient) Add(_ context.Context, collection, text string, _ map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections[collection] = append(c.collections[collection], text)
	return nil
}

func (c *InMemoryClient) Search(_ context.Context, collection, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 3
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(query))
	var out []SearchResult
	entries := c.collections[collection]
	for i := len(entries) - 1; i >= 0 && len(out) < topK; i-- {
		lowered := strings.ToLower(entries[i])
		var hits int
		for _, term := range terms {
			if strings.Contains(lowered, term) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		out = append(out, SearchResult{
			Text:  entries[i],
			Score: float32(hits) / float32(len(terms)),
		})
	}
	return out, nil
}
