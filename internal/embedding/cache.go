package embedding

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// EmbeddingCache is a fixed-size LRU of embeddings keyed by input text.
// Vectors are copied on the way in and out so callers may mutate them.
type EmbeddingCache struct {
	entries *lru.Cache[string, []float32]
}

// NewEmbeddingCache returns a cache holding at most size embeddings. size must be positive.
func NewEmbeddingCache(size int) *EmbeddingCache {
	entries, err := lru.New[string, []float32](size)
	if err != nil {
		panic(err)
	}
	return &EmbeddingCache{entries: entries}
}

// Get returns the cached embedding for text.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	vec, ok := c.entries.Get(text)
	if !ok {
		return nil, false
	}
	return cloneVector(vec), true
}

// Set stores the embedding for text, evicting the least recently used entry when full.
func (c *EmbeddingCache) Set(text string, vec []float32) {
	c.entries.Add(text, cloneVector(vec))
}

// Len returns the number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	return c.entries.Len()
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
