package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/imi/internal/apperr"
	"github.com/hyperjump/imi/internal/config"
	"go.uber.org/zap"
)

// ProgressFunc reports bytes written for a file; total is -1 when unknown.
type ProgressFunc func(file string, written, total int64)

// Downloader fetches artifacts from a repository laid out like the HuggingFace hub:
// {base}/{repository}/resolve/{revision}/{file}.
type Downloader struct {
	client     *http.Client
	cfg        config.FetchConfig
	logger     *zap.Logger
	onProgress ProgressFunc
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.client = c }
}

// WithLogger sets a logger for download events.
func WithLogger(l *zap.Logger) DownloaderOption {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithProgress sets a progress callback.
func WithProgress(fn ProgressFunc) DownloaderOption {
	return func(d *Downloader) { d.onProgress = fn }
}

// NewDownloader returns a downloader for the repository described by cfg.
func NewDownloader(cfg config.FetchConfig, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: http.DefaultClient,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch downloads the model and tokenizer into the locations cfg resolves to.
// Files that already exist are kept unless force is set.
func (d *Downloader) Fetch(ctx context.Context, emb *config.EmbeddingConfig, force bool) (Paths, error) {
	p := Paths{
		Model:     emb.ResolvedModelPath(),
		Tokenizer: emb.ResolvedTokenizerPath(),
	}
	if err := d.ensure(ctx, d.cfg.ModelFile, p.Model, force); err != nil {
		return Paths{}, err
	}
	if err := d.ensure(ctx, d.cfg.TokenizerFile, p.Tokenizer, force); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// FileURL returns the download URL of a repository file.
func (d *Downloader) FileURL(file string) string {
	base := strings.TrimSuffix(d.cfg.BaseURL, "/")
	parts := strings.Split(strings.TrimPrefix(file, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return fmt.Sprintf("%s/%s/resolve/%s/%s", base, d.cfg.Repository, url.PathEscape(d.cfg.Revision), strings.Join(parts, "/"))
}

func (d *Downloader) ensure(ctx context.Context, file, dest string, force bool) error {
	if !force {
		if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
			d.logger.Info("artifact present, skipping", zap.String("path", dest))
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return apperr.Wrap(err, apperr.CodeFetchFailure, "create artifact dir", "path", dest)
	}
	src := d.FileURL(file)
	d.logger.Info("downloading artifact", zap.String("url", src), zap.String("path", dest))
	if err := d.download(ctx, src, dest, file); err != nil {
		return apperr.Wrap(err, apperr.CodeFetchFailure, "download "+file, "url", src)
	}
	return nil
}

type progressWriter struct {
	file       string
	total      int64
	written    int64
	onProgress ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.written += int64(len(p))
	if pw.onProgress != nil {
		pw.onProgress(pw.file, pw.written, pw.total)
	}
	return len(p), nil
}

func (d *Downloader) download(ctx context.Context, src, dest, file string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if d.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.cfg.Token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	pw := &progressWriter{file: file, total: resp.ContentLength, onProgress: d.onProgress}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	closeErr := f.Close()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write file: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("close file: %w", closeErr)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}
