package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/csvedit/internal/watcher"
)

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	err := os.WriteFile(path, []byte("a,b"), 0644)
	require.NoError(t, err, "failed to create test file")

	w, err := watcher.New(watcher.Config{
		Path:        path,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		err := os.WriteFile(path, []byte(fmt.Sprintf("a,%d", i)), 0644)
		require.NoError(t, err, "failed to write file")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	otherPath := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))
	// Pre-create the other file so writes to it are just Write events
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:        path,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_RenameOverSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:        path,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	tmp := filepath.Join(dir, ".data.csv.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("b"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for rename-over save")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:        path,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		assert.NoError(t, w.Stop(), "second Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.Error(t, err)
}

func TestNew_ResolvesAbsolutePath(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig("data.csv"))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.True(t, filepath.IsAbs(w.Path()))
	require.Equal(t, "data.csv", filepath.Base(w.Path()))
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/test/data.csv")

	assert.Equal(t, "/test/data.csv", cfg.Path)
	assert.Equal(t, 200*time.Millisecond, cfg.DebounceDur)
}
