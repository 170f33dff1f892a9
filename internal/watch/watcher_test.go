package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, roots ...string) *Watcher {
	t.Helper()
	w, err := New(roots, 20*time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
	})
	return w
}

func expectChange(t *testing.T, w *Watcher) string {
	t.Helper()
	select {
	case p := <-w.Changes():
		return p
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
		return ""
	}
}

func expectQuiet(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case p := <-w.Changes():
		t.Fatalf("unexpected change notification for %s", p)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_SourceWriteNotifies(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "db.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: log\n"), 0o644))
	assert.Equal(t, path, expectChange(t, w))
}

func TestWatcher_BurstIsDebounced(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte{byte('a' + i)}, 0o644))
	}
	expectChange(t, w)
	expectQuiet(t, w)
}

func TestWatcher_IgnoresNonSources(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.schema.yaml"), []byte("x"), 0o644))
	expectQuiet(t, w)
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "late.yml")
	require.NoError(t, os.WriteFile(path, []byte("kind: log\n"), 0o644))
	assert.Equal(t, path, expectChange(t, w))
}

func TestNew_SkipsMissingRoots(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "absent"), dir}, time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, []string{dir}, w.Watched())
}
