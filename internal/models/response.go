package models

import "github.com/hyperjump/imi/internal/vector"

// EmbedResponse carries an embedding and its length.
type EmbedResponse struct {
	Embedding  []float32 `json:"embedding"`
	Dimensions int       `json:"dimensions"`
}

// IndexResponse acknowledges a stored document.
type IndexResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// SearchResponse holds ranked hits, best first.
type SearchResponse struct {
	Results []vector.Result `json:"results"`
}

// HealthResponse reports the loaded model.
type HealthResponse struct {
	Status     string `json:"status"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// DocumentResponse is a stored document without its embedding.
type DocumentResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Metadata any    `json:"metadata,omitempty"`
}

// DocumentListResponse lists the stored document IDs in ascending order.
type DocumentListResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// DeleteResponse reports whether a document was removed.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// ClearResponse reports how many documents were removed.
type ClearResponse struct {
	Cleared int `json:"cleared"`
}

// StatusResponse summarizes the server state.
type StatusResponse struct {
	Documents        int      `json:"documents"`
	Dimensions       int      `json:"dimensions"`
	Model            string   `json:"model"`
	WatchDirectories []string `json:"watch_directories"`
}

// WatchDirectoriesResponse lists the watched note directories.
type WatchDirectoriesResponse struct {
	Directories []string `json:"directories"`
}

// WatchDirectoryResponse acknowledges a watch directory change.
type WatchDirectoryResponse struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
