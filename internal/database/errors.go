package database

import (
	"errors"
	"fmt"
)

// Connection failures.
var (
	ErrNotFound     = errors.New("database file not found")
	ErrCorrupt      = errors.New("database file is corrupt or not a database")
	ErrLockedOrBusy = errors.New("database is locked or busy")
)

// ErrNoActiveConnection is returned by any operation attempted while no
// connection is open.
var ErrNoActiveConnection = errors.New("no active database connection")

// Schema and payload failures.
var (
	ErrSchemaNotFound    = errors.New("table not found")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNoPrimaryKey      = errors.New("no primary key")
	ErrInvalidRecord     = errors.New("invalid record")
)

// SQLError carries an engine-reported failure. Its message is the engine's
// message, unmodified.
type SQLError struct {
	Query string
	Cause error
}

func (e *SQLError) Error() string {
	return e.Cause.Error()
}

func (e *SQLError) Unwrap() error {
	return e.Cause
}

func sqlError(query string, err error) error {
	var se *SQLError
	if errors.As(err, &se) {
		return err
	}
	return &SQLError{Query: query, Cause: err}
}

func schemaNotFound(table string) error {
	return fmt.Errorf("%w: %q", ErrSchemaNotFound, table)
}

func invalidIdentifier(kind, name, table string) error {
	return fmt.Errorf("%w: %s %q is not in table %q", ErrInvalidIdentifier, kind, name, table)
}

func invalidRecord(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, fmt.Sprintf(format, args...))
}
