// Package indexer indexes note files from disk into the search engine.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperjump/imi/internal/extract"
	"github.com/hyperjump/imi/internal/models"
	"go.uber.org/zap"
)

const noteIDPrefix = "note:"

const (
	metaKeySourcePath  = "source_path"
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// Store is the part of the search engine the indexer writes to.
type Store interface {
	IndexDocument(ctx context.Context, req *models.IndexRequest) (string, error)
	Metadata(id string) (any, bool)
	Delete(id string) bool
}

// Indexer embeds note files and keeps them in sync with a Store.
type Indexer struct {
	store      Store
	extensions []string
	logger     *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file indexed, note removed, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// NewIndexer creates an indexer writing to store. extensions filters which
// files are notes (case-insensitive, leading dot optional); empty accepts all.
func NewIndexer(store Store, extensions []string, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		store:      store,
		extensions: extensions,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// NoteID returns the stable document ID of the note at path. The same
// cleaned absolute path always yields the same ID.
func NoteID(absolutePath string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(absolutePath)))
	return noteIDPrefix + hex.EncodeToString(hash[:])
}

// IsNoteID reports whether id was produced by NoteID.
func IsNoteID(id string) bool {
	return strings.HasPrefix(id, noteIDPrefix)
}

// Extensions returns the note extensions the indexer accepts.
func (idx *Indexer) Extensions() []string {
	return append([]string(nil), idx.extensions...)
}

// Accepts reports whether path has a note extension.
func (idx *Indexer) Accepts(path string) bool {
	return len(idx.extensions) == 0 || extensionAllowed(filepath.Ext(path), idx.extensions)
}

// IndexFile reads the note at path and indexes it under NoteID(path). It
// reports whether the note was (re)embedded. A note already indexed with the
// same mtime and size is skipped. A note whose text is blank is removed from
// the index instead.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("absolute path: %w", err)
	}
	if !idx.Accepts(absPath) {
		return false, fmt.Errorf("extension %q not in allowed list", filepath.Ext(absPath))
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return false, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("not a regular file: %s", absPath)
	}

	id := NoteID(absPath)
	if idx.unchanged(id, absPath, info) {
		idx.logger.Debug("indexer skipping unchanged note", zap.String("path", absPath))
		return false, nil
	}

	text, err := extract.File(absPath)
	if err != nil {
		return false, fmt.Errorf("extract %s: %w", absPath, err)
	}
	if strings.TrimSpace(text) == "" {
		idx.store.Delete(id)
		idx.logger.Debug("indexer dropping blank note", zap.String("path", absPath))
		return false, nil
	}

	_, err = idx.store.IndexDocument(ctx, &models.IndexRequest{
		ID:   id,
		Text: text,
		Metadata: map[string]any{
			metaKeySourcePath:  absPath,
			metaKeySourceMtime: strconv.FormatInt(info.ModTime().UnixNano(), 10),
			metaKeySourceSize:  strconv.FormatInt(info.Size(), 10),
		},
	})
	if err != nil {
		return false, fmt.Errorf("index %s: %w", absPath, err)
	}
	idx.logger.Debug("indexer note indexed", zap.String("path", absPath), zap.String("id", id))
	return true, nil
}

// RemoveFile drops the note at path from the index and reports whether it was present.
func (idx *Indexer) RemoveFile(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	removed := idx.store.Delete(NoteID(absPath))
	idx.logger.Debug("indexer note removed", zap.String("path", absPath), zap.Bool("removed", removed))
	return removed
}

// IndexDirectory walks dir and indexes every note in it. Hidden files and
// directories (such as .git or .obsidian) are skipped; so are subdirectories
// when recursive is false. PDF and spreadsheet notes that cannot be decoded
// are logged and skipped. It returns the number of notes embedded and the
// first error encountered.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string, recursive bool) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != absDir && (!recursive || IsHidden(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsHidden(path) || !idx.Accepts(path) {
			return nil
		}
		// Resolve symlinks so only regular files are indexed
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		embedded, indexErr := idx.IndexFile(ctx, path)
		if indexErr != nil && extract.IsBinary(filepath.Ext(path)) {
			idx.logger.Warn("indexer skipping unreadable note", zap.String("path", path), zap.Error(indexErr))
			return nil
		}
		if indexErr != nil {
			return indexErr
		}
		if embedded {
			n++
		}
		return nil
	})
	return n, err
}

// unchanged reports whether id is already indexed from absPath with the same mtime and size.
func (idx *Indexer) unchanged(id, absPath string, info os.FileInfo) bool {
	raw, ok := idx.store.Metadata(id)
	if !ok {
		return false
	}
	meta, ok := raw.(map[string]any)
	if !ok || meta[metaKeySourcePath] != absPath {
		return false
	}
	// Stored as strings: UnixNano exceeds the 53 bits a JSON number keeps.
	return metadataInt64(meta, metaKeySourceMtime) == info.ModTime().UnixNano() &&
		metadataInt64(meta, metaKeySourceSize) == info.Size()
}

func metadataInt64(m map[string]any, key string) int64 {
	switch n := m[key].(type) {
	case string:
		x, _ := strconv.ParseInt(n, 10, 64)
		return x
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return -1
	}
}

// IsHidden reports whether the final element of path starts with a dot.
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 1 && strings.HasPrefix(base, ".") && base != ".."
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	if extNorm == "" {
		return false
	}
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
