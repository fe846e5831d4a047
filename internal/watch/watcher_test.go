package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

// startWatcher runs w until the test ends and returns the number of
// onChange calls so far.
func startWatcher(t *testing.T, w *Watcher) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) { calls.Add(1) })
	}()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
		_ = w.Close()
	})
	return &calls
}

func TestWatcherFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "sidebargen.yaml")
	writeFile(t, cfg, "content: {}\n")

	w, err := New([]string{cfg}, WithDebounce(testDebounce), WithLogger(discard()))
	require.NoError(t, err)
	calls := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "notes.txt"), "unrelated\n")
	assert.Never(t, func() bool { return calls.Load() > 0 }, 4*testDebounce, 10*time.Millisecond)

	writeFile(t, cfg, "content: {docs_dir: docs}\n")
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "intro.md")
	writeFile(t, doc, "# Intro\n")

	w, err := New([]string{dir}, WithDebounce(4*testDebounce), WithLogger(discard()))
	require.NoError(t, err)
	calls := startWatcher(t, w)

	for i := range 5 {
		writeFile(t, doc, "# Intro\n"+string(rune('a'+i))+"\n")
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(8 * testDebounce)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "intro.md"), "# Intro\n")

	w, err := New([]string{dir}, WithDebounce(testDebounce), WithLogger(discard()))
	require.NoError(t, err)
	calls := startWatcher(t, w)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "guides"), 0o755))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, filepath.Join(dir, "guides", "setup.md"), "# Setup\n")
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "intro.md"), "# Intro\n")

	w, err := New([]string{dir}, WithDebounce(testDebounce), WithLogger(discard()))
	require.NoError(t, err)
	calls := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, ".intro.md.swp"), "swap")
	writeFile(t, filepath.Join(dir, "intro.md~"), "backup")
	assert.Never(t, func() bool { return calls.Load() > 0 }, 4*testDebounce, 10*time.Millisecond)
}

func TestNewMissingPath(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "absent")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestAddIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, WithLogger(discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Add(dir, dir))
	assert.Len(t, w.trees, 1)
	assert.Empty(t, w.files)
}
