package database

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Opener opens the database file at path and returns a handle that has
// already been verified against the engine. Implementations map engine
// rejections onto ErrNotFound, ErrCorrupt and ErrLockedOrBusy.
type Opener func(ctx context.Context, path string, readOnly bool) (*sql.DB, error)

// Conn is the single live handle to one database file.
type Conn struct {
	ID       uuid.UUID
	Path     string
	ReadOnly bool
	OpenedAt time.Time

	db     *sql.DB
	closed atomic.Bool
}

// DB returns the underlying handle.
func (c *Conn) DB() *sql.DB {
	return c.db
}

// Alive reports whether the connection has not been closed.
func (c *Conn) Alive() bool {
	return !c.closed.Load()
}

func (c *Conn) close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}

// liveErr converts a failure observed on a connection that was closed
// underneath the caller into ErrNoActiveConnection.
func (c *Conn) liveErr(query string, err error) error {
	if !c.Alive() {
		return ErrNoActiveConnection
	}
	return sqlError(query, err)
}
