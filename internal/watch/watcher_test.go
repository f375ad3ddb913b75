package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/studiodb/internal/logging"
)

const waitFor = 2 * time.Second

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(time.Now().String()), 0o600))
}

func collect() (chan Event, func(Event)) {
	ch := make(chan Event, 64)
	return ch, func(ev Event) { ch <- ev }
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ht.sqlite")
	writeFile(t, path)

	w := New(logging.Discard())
	defer w.Stop()

	id := uuid.New()
	events, onChanged := collect()
	require.NoError(t, w.Watch(id, path, onChanged))

	active, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, id, active)

	writeFile(t, path)

	select {
	case ev := <-events:
		assert.Equal(t, id, ev.ConnectionID)
		assert.Equal(t, path, ev.Path)
		assert.False(t, ev.At.IsZero())
	case <-time.After(waitFor):
		t.Fatal("no event for database write")
	}
}

func TestWatcher_ReportsJournalWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ht.sqlite")
	writeFile(t, path)

	w := New(logging.Discard())
	defer w.Stop()

	events, onChanged := collect()
	require.NoError(t, w.Watch(uuid.New(), path, onChanged))

	writeFile(t, path+"-wal")

	select {
	case ev := <-events:
		assert.Equal(t, path, ev.Path, "sidecar events are reported against the database")
	case <-time.After(waitFor):
		t.Fatal("no event for wal write")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ht.sqlite")
	writeFile(t, path)

	w := New(logging.Discard())
	defer w.Stop()

	events, onChanged := collect()
	require.NoError(t, w.Watch(uuid.New(), path, onChanged))

	writeFile(t, filepath.Join(dir, "debug.log"))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopSilences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ht.sqlite")
	writeFile(t, path)

	w := New(logging.Discard())
	events, onChanged := collect()
	require.NoError(t, w.Watch(uuid.New(), path, onChanged))

	w.Stop()
	w.Stop()
	_, ok := w.Active()
	assert.False(t, ok)

	writeFile(t, path)

	select {
	case ev := <-events:
		t.Fatalf("event after stop: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_ReplaceDropsOldWatch(t *testing.T) {
	first := filepath.Join(t.TempDir(), ".ht.sqlite")
	second := filepath.Join(t.TempDir(), ".ht.sqlite")
	writeFile(t, first)
	writeFile(t, second)

	w := New(logging.Discard())
	defer w.Stop()

	oldEvents, oldOnChanged := collect()
	require.NoError(t, w.Watch(uuid.New(), first, oldOnChanged))

	newID := uuid.New()
	newEvents, newOnChanged := collect()
	require.NoError(t, w.Watch(newID, second, newOnChanged))

	writeFile(t, first)
	writeFile(t, second)

	select {
	case ev := <-newEvents:
		assert.Equal(t, newID, ev.ConnectionID)
		assert.Equal(t, second, ev.Path)
	case <-time.After(waitFor):
		t.Fatal("no event from the new watch")
	}

	select {
	case ev := <-oldEvents:
		t.Fatalf("event from replaced watch: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_UnobservableDirectoryDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", ".ht.sqlite")

	w := New(logging.Discard())
	defer w.Stop()

	id := uuid.New()
	require.NoError(t, w.Watch(id, path, func(Event) {}))

	active, ok := w.Active()
	assert.True(t, ok)
	assert.Equal(t, id, active)
}

func TestWatcher_NotifierFailureDegrades(t *testing.T) {
	orig := newNotifier
	newNotifier = func() (*fsnotify.Watcher, error) { return nil, errors.New("too many open files") }
	t.Cleanup(func() { newNotifier = orig })

	path := filepath.Join(t.TempDir(), ".ht.sqlite")
	writeFile(t, path)

	w := New(logging.Discard())
	defer w.Stop()

	id := uuid.New()
	events, onChanged := collect()
	require.NoError(t, w.Watch(id, path, onChanged))

	active, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, id, active)

	writeFile(t, path)
	select {
	case ev := <-events:
		t.Fatalf("degraded watch fired: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}

	w.Stop()
	_, ok = w.Active()
	assert.False(t, ok)
}
