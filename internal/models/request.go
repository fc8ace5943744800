// Package models defines the request and response bodies of the HTTP API.
package models

import (
	"strings"

	"github.com/hyperjump/imi/internal/apperr"
)

// EmbedRequest asks for the embedding of a single text. An empty text embeds
// to the zero vector.
type EmbedRequest struct {
	Text string `json:"text"`
}

// IndexRequest stores a text under an ID. An empty ID is generated by the server.
type IndexRequest struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Metadata any    `json:"metadata,omitempty"`
}

// Validate rejects an empty text.
func (r *IndexRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return apperr.New(apperr.CodeRequestInvalid, "text cannot be empty")
	}
	return nil
}

// SearchRequest ranks indexed documents against a query text.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Validate rejects an empty query and normalizes Limit: zero or negative
// becomes defaultLimit, anything above maxLimit is capped.
func (r *SearchRequest) Validate(defaultLimit, maxLimit int) error {
	if strings.TrimSpace(r.Query) == "" {
		return apperr.New(apperr.CodeRequestInvalid, "query cannot be empty")
	}
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	if maxLimit > 0 && r.Limit > maxLimit {
		r.Limit = maxLimit
	}
	return nil
}

// WatchDirectoryRequest adds a directory to the note watcher.
type WatchDirectoryRequest struct {
	Path string `json:"path"`
	// Sync indexes files already in the directory; defaults to true.
	Sync *bool `json:"sync,omitempty"`
}

// SyncOrDefault reports whether existing files should be indexed.
func (r *WatchDirectoryRequest) SyncOrDefault() bool {
	if r.Sync != nil {
		return *r.Sync
	}
	return true
}
