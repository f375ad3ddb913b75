package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the lifecycle state of the Manager.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Manager owns the single active connection. Open, Close and Current are
// serialized, so callers never observe two different current connections
// and never see a half-opened one.
type Manager struct {
	mu     sync.Mutex
	opener Opener
	log    logrus.FieldLogger
	state  State
	conn   *Conn
}

// NewManager creates a Manager that opens files through opener.
func NewManager(opener Opener, log logrus.FieldLogger) *Manager {
	return &Manager{
		opener: opener,
		log:    log.WithField("component", "connection"),
	}
}

// Open closes any existing connection and opens path. On failure the
// manager is left closed.
func (m *Manager) Open(ctx context.Context, path string, readOnly bool) (*Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closeLocked(); err != nil {
		m.log.WithError(err).Warn("closing previous connection")
	}

	m.state = StateOpening

	abs, err := filepath.Abs(path)
	if err != nil {
		m.state = StateClosed
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		m.state = StateClosed
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		m.state = StateClosed
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, abs)
	}

	db, err := m.opener(ctx, abs, readOnly)
	if err != nil {
		m.state = StateClosed
		return nil, err
	}

	m.conn = &Conn{
		ID:       uuid.New(),
		Path:     abs,
		ReadOnly: readOnly,
		OpenedAt: time.Now(),
		db:       db,
	}
	m.state = StateOpen

	m.log.WithFields(logrus.Fields{
		"path":     abs,
		"id":       m.conn.ID,
		"readonly": readOnly,
	}).Info("database opened")

	return m.conn, nil
}

// Close releases the current connection. Calling it with nothing open is a no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	conn := m.conn
	m.conn = nil
	m.state = StateClosed
	if conn == nil {
		return nil
	}
	m.log.WithField("path", conn.Path).Debug("database closed")
	return conn.close()
}

// Current returns the open connection or ErrNoActiveConnection.
func (m *Manager) Current() (*Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateOpen || m.conn == nil {
		return nil, ErrNoActiveConnection
	}
	return m.conn, nil
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
