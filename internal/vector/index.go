// Package vector provides an in-memory vector index with brute-force cosine similarity search.
package vector

import (
	"sort"
	"sync"
)

// Document is one indexed entry.
type Document struct {
	ID        string    `json:"id"`
	Embedding []float32 `json:"-"`
	Text      string    `json:"text"`
	// Metadata is an arbitrary decoded JSON value; nil when absent.
	Metadata any `json:"metadata,omitempty"`
}

// Result is a single search hit.
type Result struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}

// Index maps document IDs to documents. Reads (Search, Get, Count, IDs) run
// concurrently; writes (Add, Delete, Clear) are exclusive. Search scans every
// entry, so cost grows as O(n·D) per query.
type Index struct {
	docs map[string]*Document
	mu   sync.RWMutex
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{docs: make(map[string]*Document)}
}

// Add inserts the document for id, replacing any existing entry entirely.
// The embedding and metadata are copied.
func (x *Index) Add(id string, embedding []float32, text string, metadata any) {
	doc := &Document{
		ID:        id,
		Embedding: cloneVector(embedding),
		Text:      text,
		Metadata:  cloneMetadata(metadata),
	}
	x.mu.Lock()
	x.docs[id] = doc
	x.mu.Unlock()
}

// Search returns up to limit documents ranked by cosine similarity to query,
// highest first. Equal scores are ordered by ascending ID. limit <= 0 yields
// no results; an empty index yields an empty slice.
func (x *Index) Search(query []float32, limit int) []Result {
	if limit <= 0 {
		return []Result{}
	}

	// Documents are immutable once stored, so the snapshot can be scored without the lock.
	x.mu.RLock()
	snapshot := make([]*Document, 0, len(x.docs))
	for _, doc := range x.docs {
		snapshot = append(snapshot, doc)
	}
	x.mu.RUnlock()

	results := make([]Result, len(snapshot))
	for i, doc := range snapshot {
		results[i] = Result{
			ID:    doc.ID,
			Score: CosineSimilarity(query, doc.Embedding),
			Text:  doc.Text,
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if limit < len(results) {
		results = results[:limit]
	}
	return results
}

// Get returns a copy of the document stored under id.
func (x *Index) Get(id string) (Document, bool) {
	x.mu.RLock()
	doc, ok := x.docs[id]
	x.mu.RUnlock()
	if !ok {
		return Document{}, false
	}
	out := *doc
	out.Embedding = cloneVector(doc.Embedding)
	out.Metadata = cloneMetadata(doc.Metadata)
	return out, true
}

// Delete removes id and reports whether it was present.
func (x *Index) Delete(id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.docs[id]; !ok {
		return false
	}
	delete(x.docs, id)
	return true
}

// Clear removes all documents and returns how many were removed.
func (x *Index) Clear() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	n := len(x.docs)
	x.docs = make(map[string]*Document)
	return n
}

// Count returns the number of documents.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// IDs returns the stored document IDs in ascending order.
func (x *Index) IDs() []string {
	x.mu.RLock()
	ids := make([]string, 0, len(x.docs))
	for id := range x.docs {
		ids = append(ids, id)
	}
	x.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

// cloneMetadata deep-copies a decoded JSON value. Maps and slices are copied
// recursively; scalars are immutable and returned as is.
func cloneMetadata(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneMetadata(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneMetadata(e)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
