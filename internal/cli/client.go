package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperjump/imi/internal/apperr"
	"github.com/hyperjump/imi/internal/models"
)

// Client talks to a running imi server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL (for example
// "http://127.0.0.1:8765"). A nil httpClient uses a client with a 60s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var out models.HealthResponse
	return &out, c.do(ctx, http.MethodGet, "/health", nil, &out)
}

// Status calls GET /status.
func (c *Client) Status(ctx context.Context) (*models.StatusResponse, error) {
	var out models.StatusResponse
	return &out, c.do(ctx, http.MethodGet, "/status", nil, &out)
}

// Embed calls POST /embed.
func (c *Client) Embed(ctx context.Context, text string) (*models.EmbedResponse, error) {
	var out models.EmbedResponse
	return &out, c.do(ctx, http.MethodPost, "/embed", &models.EmbedRequest{Text: text}, &out)
}

// Index calls POST /index.
func (c *Client) Index(ctx context.Context, req *models.IndexRequest) (*models.IndexResponse, error) {
	var out models.IndexResponse
	return &out, c.do(ctx, http.MethodPost, "/index", req, &out)
}

// Search calls POST /search.
func (c *Client) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	var out models.SearchResponse
	return &out, c.do(ctx, http.MethodPost, "/search", req, &out)
}

// List calls GET /documents.
func (c *Client) List(ctx context.Context) (*models.DocumentListResponse, error) {
	var out models.DocumentListResponse
	return &out, c.do(ctx, http.MethodGet, "/documents", nil, &out)
}

// Get calls GET /documents/{id}.
func (c *Client) Get(ctx context.Context, id string) (*models.DocumentResponse, error) {
	var out models.DocumentResponse
	return &out, c.do(ctx, http.MethodGet, "/documents/"+url.PathEscape(id), nil, &out)
}

// Delete calls DELETE /documents/{id}.
func (c *Client) Delete(ctx context.Context, id string) (*models.DeleteResponse, error) {
	var out models.DeleteResponse
	return &out, c.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, &out)
}

// Clear calls DELETE /documents.
func (c *Client) Clear(ctx context.Context) (*models.ClearResponse, error) {
	var out models.ClearResponse
	return &out, c.do(ctx, http.MethodDelete, "/documents", nil, &out)
}

// WatchDirectories calls GET /watch/directories.
func (c *Client) WatchDirectories(ctx context.Context) (*models.WatchDirectoriesResponse, error) {
	var out models.WatchDirectoriesResponse
	return &out, c.do(ctx, http.MethodGet, "/watch/directories", nil, &out)
}

// AddWatchDirectory calls POST /watch/directories.
func (c *Client) AddWatchDirectory(ctx context.Context, req *models.WatchDirectoryRequest) (*models.WatchDirectoryResponse, error) {
	var out models.WatchDirectoryResponse
	return &out, c.do(ctx, http.MethodPost, "/watch/directories", req, &out)
}

// RemoveWatchDirectory calls DELETE /watch/directories.
func (c *Client) RemoveWatchDirectory(ctx context.Context, path string) (*models.WatchDirectoryResponse, error) {
	var out models.WatchDirectoryResponse
	return &out, c.do(ctx, http.MethodDelete, "/watch/directories?path="+url.QueryEscape(path), nil, &out)
}

// do sends body as JSON and decodes a 2xx reply into out. Error replies are
// returned as coded errors carrying the server's code and HTTP status.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w (is `imi server` running?)", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e models.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		code := apperr.Code(e.Code)
		if code == "" {
			code = apperr.CodeInternalFailure
		}
		return apperr.New(code, fmt.Sprintf("server returned %d: %s", resp.StatusCode, e.Error), "status", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
