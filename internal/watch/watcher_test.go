package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRelevant(t *testing.T) {
	tests := map[string]bool{
		"/p/src/lib.rs":              true,
		"/p/programs/a/src/state.rs": true,
		"/p/Cargo.toml":              true,
		"/p/programs/a/Cargo.toml":   true,
		"/p/README.md":               false,
		"/p/Cargo.lock":              false,
		"/p/src/.lib.rs.swp":         false,
		"/p/src/.#lib.rs":            false,
	}
	for path, want := range tests {
		assert.Equal(t, want, Relevant(path), path)
	}
}

func TestSkipDir(t *testing.T) {
	assert.True(t, skipDir("target"))
	assert.True(t, skipDir(".git"))
	assert.True(t, skipDir("node_modules"))
	assert.False(t, skipDir("src"))
}

func TestWatcher_BatchesSourceChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	lib := filepath.Join(src, "lib.rs")
	require.NoError(t, os.WriteFile(lib, []byte("fn a() {}\n"), 0o644))

	var mu sync.Mutex
	var batches [][]string
	fired := make(chan struct{}, 4)
	w, err := NewWatcher(root, func(_ context.Context, changed []string) {
		mu.Lock()
		batches = append(batches, changed)
		mu.Unlock()
		fired <- struct{}{}
	})
	require.NoError(t, err)
	w.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(lib, []byte("fn a() {}\nfn b() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("ignored"), 0o644))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, batches)
	assert.Equal(t, []string{lib}, batches[0])
	assert.GreaterOrEqual(t, w.Stats().Batches, 1)
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "programs"), 0o755))

	fired := make(chan []string, 4)
	w, err := NewWatcher(root, func(_ context.Context, changed []string) { fired <- changed })
	require.NoError(t, err)
	w.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	dir := filepath.Join(root, "programs", "counter")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	// Give the watcher a moment to register the new directory.
	deadline := time.Now().Add(5 * time.Second)
	file := filepath.Join(dir, "lib.rs")
	for {
		require.NoError(t, os.WriteFile(file, []byte("// v\n"), 0o644))
		select {
		case changed := <-fired:
			assert.Contains(t, changed, file)
			return
		case <-time.After(300 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("change in new directory not observed")
		}
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(t.TempDir(), func(context.Context, []string) {})
	require.NoError(t, err)
	w.Stop()
}

func TestWatcher_StopAfterFailedStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), func(context.Context, []string) {})
	require.NoError(t, err)
	require.Error(t, w.Start(context.Background()))

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after a failed Start")
	}
}
