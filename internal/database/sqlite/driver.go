package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/joacominatel/studiodb/internal/database"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const busyTimeout = 5 * time.Second

// Open opens the SQLite file at path and verifies that the engine accepts
// it. It satisfies database.Opener. The file must already exist; Open never
// creates one.
func Open(ctx context.Context, path string, readOnly bool) (*sql.DB, error) {
	db, err := sql.Open(DriverName, DSN(path, readOnly))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, classify(err))
	}

	// One session, one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// sql.Open is lazy: force the engine to read the header so corrupt or
	// locked files fail here rather than on the first query.
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master`).Scan(&n); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, classify(err))
	}

	return db, nil
}

// DSN builds the connection string for path.
func DSN(path string, readOnly bool) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	if readOnly {
		q.Add("_pragma", "query_only(1)")
	}
	return path + "?" + q.Encode()
}

// classify maps engine result codes onto the connection error taxonomy.
func classify(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	// Extended result codes are enabled; the primary code is the low byte.
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
		return fmt.Errorf("%w: %v", database.ErrCorrupt, err)
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %v", database.ErrLockedOrBusy, err)
	case sqlite3.SQLITE_CANTOPEN:
		return fmt.Errorf("%w: %v", database.ErrNotFound, err)
	default:
		return err
	}
}
