// Package watch reports modifications of the open database file made outside
// the current session.
package watch

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event describes one observed modification.
type Event struct {
	ConnectionID uuid.UUID
	Path         string
	Op           fsnotify.Op
	At           time.Time
}

// newNotifier creates the OS-level notifier; replaced in tests.
var newNotifier = fsnotify.NewWatcher

// relevantOps are the operations that change database content.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// sidecars are the files SQLite writes next to the database.
var sidecars = []string{"", "-wal", "-journal"}

// Watcher observes at most one database file at a time. Installing a new
// watch tears down the previous one; events belonging to a torn down watch
// are dropped.
type Watcher struct {
	mu     sync.Mutex
	active atomic.Pointer[watch]
	log    logrus.FieldLogger
}

type watch struct {
	id        uuid.UUID
	path      string
	names     map[string]bool
	notify    *fsnotify.Watcher
	onChanged func(Event)
	done      chan struct{}
}

// New creates a Watcher with nothing installed.
func New(log logrus.FieldLogger) *Watcher {
	return &Watcher{log: log.WithField("component", "watch")}
}

// Watch installs an observer for path on behalf of connection id. onChanged
// is called once per observed event, sequentially, from a single goroutine.
// Failing to observe the path is not an error: the watch is installed but
// never fires.
func (w *Watcher) Watch(id uuid.UUID, path string, onChanged func(Event)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()

	path = filepath.Clean(path)
	wt := &watch{
		id:        id,
		path:      path,
		names:     make(map[string]bool, len(sidecars)),
		onChanged: onChanged,
		done:      make(chan struct{}),
	}
	for _, suffix := range sidecars {
		wt.names[path+suffix] = true
	}

	notify, err := newNotifier()
	if err != nil {
		w.degradeLocked(wt, err)
		return nil
	}

	// Watch the directory rather than the file so replacements and journal
	// files are seen too.
	if err := notify.Add(filepath.Dir(path)); err != nil {
		_ = notify.Close()
		w.degradeLocked(wt, err)
		return nil
	}
	wt.notify = notify
	w.active.Store(wt)

	w.log.WithField("path", path).Debug("monitoring database file")
	go w.run(wt)
	return nil
}

// Stop tears down the active watch. It is safe to call with nothing installed.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

// Active returns the connection the active watch belongs to.
func (w *Watcher) Active() (uuid.UUID, bool) {
	wt := w.active.Load()
	if wt == nil {
		return uuid.Nil, false
	}
	return wt.id, true
}

// degradeLocked installs wt without a notifier so Active still reports it.
func (w *Watcher) degradeLocked(wt *watch, err error) {
	w.log.WithError(err).WithField("path", wt.path).Warn("cannot observe database file, change notifications disabled")
	w.active.Store(wt)
}

func (w *Watcher) stopLocked() {
	wt := w.active.Swap(nil)
	if wt == nil {
		return
	}
	close(wt.done)
	if wt.notify != nil {
		_ = wt.notify.Close()
	}
	w.log.WithField("path", wt.path).Debug("terminating watcher")
}

func (w *Watcher) run(wt *watch) {
	for {
		select {
		case <-wt.done:
			return
		case event, ok := <-wt.notify.Events:
			if !ok {
				return
			}
			if event.Op&relevantOps == 0 || !wt.names[filepath.Clean(event.Name)] {
				continue
			}
			// Drop events for a watch that has been replaced or stopped.
			if w.active.Load() != wt {
				return
			}
			w.log.WithField("event", event.String()).Debug("watcher got event")
			if wt.onChanged != nil {
				wt.onChanged(Event{
					ConnectionID: wt.id,
					Path:         wt.path,
					Op:           event.Op,
					At:           time.Now(),
				})
			}
		case err, ok := <-wt.notify.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watcher got error")
		}
	}
}
