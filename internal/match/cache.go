package match

import (
	"context"
	"sync"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// SessionCache holds term embeddings for the life of one matching session.
// It is passed explicitly into the engine — never module state — and is
// safe to share read-only across concurrent lookups after warming. A new
// session gets a new cache; nothing persists across runs.
type SessionCache struct {
	mu   sync.RWMutex
	vecs map[string][]float64
}

// NewSessionCache creates an empty session cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{vecs: make(map[string][]float64)}
}

// Get returns the cached embedding for a term id.
func (c *SessionCache) Get(termID string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.vecs[termID]
	return vec, ok
}

func (c *SessionCache) put(termID string, vec []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vecs[termID] = vec
}

// Warm populates the cache for every term that does not yet have an
// embedding. Terms that already carry a vector are cached as-is; the rest
// are embedded in one batch as "display name: description". A nil embedder
// or a provider failure leaves the cache partially warmed — matching then
// falls back to description overlap for the missing terms.
func (c *SessionCache) Warm(ctx context.Context, embedder domain.Embedder, terms []domain.Term) error {
	var missing []domain.Term
	for _, term := range terms {
		if _, ok := c.Get(term.ID); ok {
			continue
		}
		if len(term.Embedding) > 0 {
			c.put(term.ID, term.Embedding)
			continue
		}
		missing = append(missing, term)
	}
	if embedder == nil || len(missing) == 0 {
		return nil
	}

	texts := make([]string, len(missing))
	for i, term := range missing {
		texts[i] = term.DisplayName + ": " + term.Description
	}
	vecs, err := embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	for i, vec := range vecs {
		c.put(missing[i].ID, vec)
	}
	return nil
}
