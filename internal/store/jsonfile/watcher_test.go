package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, dir, pattern string) *SnapshotWatcher {
	t.Helper()
	w, err := NewSnapshotWatcher(dir, WatcherOptions{
		Pattern:  pattern,
		Debounce: 50 * time.Millisecond,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func collect(events <-chan SnapshotEvent, window time.Duration) []string {
	timeout := time.After(window)
	var paths []string
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return paths
			}
			paths = append(paths, filepath.Base(ev.Path))
		case <-timeout:
			return paths
		}
	}
}

func TestSnapshotWatcher_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events := w.Watch(ctx)

	path := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, path, ev.Path)
		assert.False(t, ev.Timestamp.IsZero())
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestSnapshotWatcher_PatternFilters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, "snapshot-*.json")

	events := w.Watch(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshot-1.json.tmp"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshot-1.json"), []byte(`[]`), 0o644))

	assert.Equal(t, []string{"snapshot-1.json"}, collect(events, 400*time.Millisecond))
}

func TestSnapshotWatcher_Subdirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, DefaultPattern)
	events := w.Watch(context.Background())

	sub := filepath.Join(dir, "branch-a")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "orders.json"), []byte(`[]`), 0o644))

	assert.Equal(t, []string{"orders.json"}, collect(events, 500*time.Millisecond))
}

func TestSnapshotWatcher_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, "")
	events := w.Watch(context.Background())

	path := filepath.Join(dir, "burst.json")
	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Len(t, collect(events, 400*time.Millisecond), 1, "should receive exactly one debounced event")
}

func TestSnapshotWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(t, t.TempDir(), "")

	ctx, cancel := context.WithCancel(context.Background())
	events := w.Watch(ctx)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestSnapshotWatcher_Existing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "a.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte(``), 0o644))

	w := newTestWatcher(t, dir, DefaultPattern)

	got, err := w.Existing()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "nested", "a.json"),
	}, got)
}

func TestNewSnapshotWatcher_InvalidPattern(t *testing.T) {
	_, err := NewSnapshotWatcher(t.TempDir(), WatcherOptions{Pattern: "[unclosed"})
	require.Error(t, err)
}

func TestSnapshotWatcher_Close(t *testing.T) {
	w, err := NewSnapshotWatcher(t.TempDir(), WatcherOptions{})
	require.NoError(t, err)

	events := w.Watch(context.Background())
	require.NoError(t, w.Close())

	_, ok := <-events
	assert.False(t, ok)
}
