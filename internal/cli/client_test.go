package cli

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/imi/internal/apperr"
	"github.com/hyperjump/imi/internal/config"
	"github.com/hyperjump/imi/internal/embedding"
	"github.com/hyperjump/imi/internal/models"
	"github.com/hyperjump/imi/internal/search"
	"github.com/hyperjump/imi/internal/server"
	"github.com/hyperjump/imi/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Dimensions = 8
	emb := embedding.NewMock(&cfg.Embedding, nil)
	engine := search.NewEngine(emb, vector.NewIndex(), &cfg.Search)
	srv := httptest.NewServer(server.NewServer(engine, cfg, nil).Handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client())
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 8, health.Dimensions)

	emb, err := c.Embed(ctx, "hello")
	require.NoError(t, err)
	assert.Len(t, emb.Embedding, 8)

	idx, err := c.Index(ctx, &models.IndexRequest{ID: "note:1", Text: "cat", Metadata: map[string]any{"k": "v"}})
	require.NoError(t, err)
	assert.Equal(t, "note:1", idx.ID)
	_, err = c.Index(ctx, &models.IndexRequest{ID: "b", Text: "dog"})
	require.NoError(t, err)

	res, err := c.Search(ctx, &models.SearchRequest{Query: "cat", Limit: 1})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "note:1", res.Results[0].ID)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "note:1"}, list.IDs)
	assert.Equal(t, 2, list.Count)

	doc, err := c.Get(ctx, "note:1")
	require.NoError(t, err)
	assert.Equal(t, "cat", doc.Text)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Documents)

	del, err := c.Delete(ctx, "note:1")
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	cleared, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cleared.Cleared)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeEntityNotFound))
	assert.Contains(t, err.Error(), "404")

	_, err = c.Search(ctx, &models.SearchRequest{Query: ""})
	assert.True(t, apperr.HasCode(err, apperr.CodeRequestInvalid))

	_, err = c.WatchDirectories(ctx)
	assert.True(t, apperr.HasCode(err, apperr.CodeWatchDisabled))
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)
	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imi server")
}
