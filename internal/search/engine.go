// Package search composes the text embedder and the vector index into the
// operations served over HTTP.
package search

import (
	"context"

	"github.com/google/uuid"
	"github.com/hyperjump/imi/internal/config"
	"github.com/hyperjump/imi/internal/embedding"
	"github.com/hyperjump/imi/internal/models"
	"github.com/hyperjump/imi/internal/vector"
	"go.uber.org/zap"
)

// Engine embeds texts and stores or ranks them in a vector index. It is
// constructed once at startup and shared by all request handlers.
type Engine struct {
	embedder embedding.Embedder
	index    *vector.Index
	config   *config.SearchConfig
	logger   *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over the given embedder and index.
func NewEngine(embedder embedding.Embedder, index *vector.Index, cfg *config.SearchConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		embedder: embedder,
		index:    index,
		config:   cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed returns the embedding of text.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.embedder.Embed(ctx, text)
}

// IndexDocument embeds req.Text and stores it, replacing any document with the
// same ID. A missing ID is generated. It returns the stored ID.
func (e *Engine) IndexDocument(ctx context.Context, req *models.IndexRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	vec, err := e.embedder.Embed(ctx, req.Text)
	if err != nil {
		return "", err
	}
	e.index.Add(id, vec, req.Text, req.Metadata)
	e.logger.Debug("document indexed", zap.String("id", id), zap.Int("text_len", len(req.Text)))
	return id, nil
}

// Search embeds the query and returns the closest documents.
func (e *Engine) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	if err := req.Validate(e.config.DefaultLimit, e.config.MaxLimit); err != nil {
		return nil, err
	}
	vec, err := e.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	results := e.index.Search(vec, req.Limit)
	e.logger.Debug("search", zap.String("query", req.Query), zap.Int("limit", req.Limit), zap.Int("results", len(results)))
	return &models.SearchResponse{Results: results}, nil
}

// Get returns the document stored under id.
func (e *Engine) Get(id string) (*models.DocumentResponse, bool) {
	doc, ok := e.index.Get(id)
	if !ok {
		return nil, false
	}
	return &models.DocumentResponse{ID: doc.ID, Text: doc.Text, Metadata: doc.Metadata}, true
}

// Metadata returns the metadata stored under id.
func (e *Engine) Metadata(id string) (any, bool) {
	doc, ok := e.index.Get(id)
	if !ok {
		return nil, false
	}
	return doc.Metadata, true
}

// Delete removes id and reports whether it was present.
func (e *Engine) Delete(id string) bool {
	deleted := e.index.Delete(id)
	e.logger.Debug("document delete", zap.String("id", id), zap.Bool("deleted", deleted))
	return deleted
}

// Clear removes every document and returns how many were removed.
func (e *Engine) Clear() int {
	n := e.index.Clear()
	e.logger.Debug("index cleared", zap.Int("documents", n))
	return n
}

// List returns the IDs of every indexed document in ascending order.
func (e *Engine) List() *models.DocumentListResponse {
	ids := e.index.IDs()
	return &models.DocumentListResponse{IDs: ids, Count: len(ids)}
}

// Count returns the number of indexed documents.
func (e *Engine) Count() int {
	return e.index.Count()
}

// Health reports the loaded model.
func (e *Engine) Health() *models.HealthResponse {
	return &models.HealthResponse{
		Status:     "ok",
		Model:      e.embedder.Model(),
		Dimensions: e.embedder.Dimensions(),
	}
}

// Status summarizes the engine state. watchDirs may be nil.
func (e *Engine) Status(watchDirs []string) *models.StatusResponse {
	if watchDirs == nil {
		watchDirs = []string{}
	}
	return &models.StatusResponse{
		Documents:        e.index.Count(),
		Dimensions:       e.embedder.Dimensions(),
		Model:            e.embedder.Model(),
		WatchDirectories: watchDirs,
	}
}
