package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const testDebounce = 50 * time.Millisecond

// recorder is a Handler that records calls and accepts .md and .txt files.
type recorder struct {
	mu      sync.Mutex
	indexed []string
	removed []string
	synced  []string
}

func (r *recorder) Accepts(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".md" || ext == ".txt"
}

func (r *recorder) IndexFile(_ context.Context, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, path)
	return true, nil
}

func (r *recorder) RemoveFile(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
	return true
}

func (r *recorder) IndexDirectory(_ context.Context, dir string, _ bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = append(r.synced, dir)
	return 0, nil
}

func (r *recorder) snapshot() (indexed, removed, synced []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.indexed...), append([]string(nil), r.removed...), append([]string(nil), r.synced...)
}

func startWatcher(t *testing.T, roots []string, recursive bool, h Handler) *Watcher {
	t.Helper()
	w := NewWatcher(roots, recursive, h, WithDebounce(testDebounce))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	return w
}

func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func contains(paths []string, suffix string) bool {
	for _, p := range paths {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

func TestWatcher_AddRemoveDirectories(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := startWatcher(t, nil, true, rec)

	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || dirs[0] != filepath.Clean(dir) {
		t.Errorf("Directories() = %v", dirs)
	}

	if err := w.RemoveDirectory(dir); err != nil {
		t.Fatal(err)
	}
	if len(w.Directories()) != 0 {
		t.Errorf("after remove: %v", w.Directories())
	}
}

func TestWatcher_AddDirectorySyncsExisting(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := startWatcher(t, nil, true, rec)

	if err := w.AddDirectory(dir, true); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, func() bool {
		_, _, synced := rec.snapshot()
		return len(synced) == 1
	})
	if !ok {
		t.Error("expected the added directory to be synced")
	}
}

func TestWatcher_DebounceAndExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, []string{dir}, true, rec)

	note := filepath.Join(dir, "note.md")
	for i := 0; i < 5; i++ {
		if err := writeFile(note, strings.Repeat("x", i+1)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writeFile(filepath.Join(dir, "image.png"), "png"); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, func() bool { i, _, _ := rec.snapshot(); return len(i) > 0 }) {
		t.Fatal("expected note.md to be indexed")
	}
	time.Sleep(4 * testDebounce)
	indexed, _, _ := rec.snapshot()
	if len(indexed) != 1 || !strings.HasSuffix(indexed[0], "note.md") {
		t.Errorf("expected a single debounced index of note.md, got %v", indexed)
	}
}

func TestWatcher_RemoveEvent(t *testing.T) {
	dir := t.TempDir()
	note := filepath.Join(dir, "gone.txt")
	if err := writeFile(note, "bye"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, []string{dir}, true, rec)

	if err := os.Remove(note); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { _, r, _ := rec.snapshot(); return contains(r, "gone.txt") }) {
		t.Error("expected gone.txt to be removed")
	}
}

func TestWatcher_RenameReindexes(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.md")
	if err := writeFile(oldPath, "content"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, []string{dir}, true, rec)

	if err := os.Rename(oldPath, filepath.Join(dir, "new.md")); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, func() bool {
		i, r, _ := rec.snapshot()
		return contains(r, "old.md") && contains(i, "new.md")
	})
	if !ok {
		i, r, _ := rec.snapshot()
		t.Errorf("expected old.md removed and new.md indexed, got indexed=%v removed=%v", i, r)
	}
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, []string{dir}, true, rec)

	if err := writeFile(filepath.Join(dir, ".draft.md"), "hidden"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "visible.md"), "shown"); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { i, _, _ := rec.snapshot(); return contains(i, "visible.md") }) {
		t.Fatal("expected visible.md to be indexed")
	}
	indexed, _, _ := rec.snapshot()
	if contains(indexed, ".draft.md") {
		t.Errorf("hidden note should not be indexed: %v", indexed)
	}
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, []string{dir}, true, rec)

	nested := filepath.Join(dir, "level1", "level2")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { _, _, s := rec.snapshot(); return len(s) > 0 }) {
		t.Fatal("expected the new directory to be synced")
	}
	// Give the watcher a moment to register the nested directories.
	time.Sleep(100 * time.Millisecond)
	if err := writeFile(filepath.Join(nested, "deep.md"), "deep content"); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { i, _, _ := rec.snapshot(); return contains(i, "deep.md") }) {
		t.Error("expected deep.md to be indexed")
	}
}

func TestWatcher_SyncExistingFiles(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	rec := &recorder{}
	w := startWatcher(t, []string{a, b}, false, rec)

	w.SyncExistingFiles()
	_, _, synced := rec.snapshot()
	if len(synced) != 2 || synced[0] != a || synced[1] != b {
		t.Errorf("expected both roots synced, got %v", synced)
	}
}

func TestWatcher_StartCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "watch", "me")
	startWatcher(t, []string{root}, true, &recorder{})

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher([]string{t.TempDir()}, true, &recorder{})
	w.Stop()
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.txt", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		got := inDir(tt.dir, tt.path)
		if got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
