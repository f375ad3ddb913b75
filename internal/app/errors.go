package app

import "fmt"

// ErrConnection reports a database file that could not be opened. Path is
// the file that was tried, when known.
type ErrConnection struct {
	Path  string
	Cause error
}

func (e *ErrConnection) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("open database: %v", e.Cause)
	}
	return fmt.Sprintf("open database %s: %v", e.Path, e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery carries an ad-hoc statement the engine rejected. The engine's
// message stays in Cause, unchanged.
type ErrQuery struct {
	Query string
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("statement failed: %v", e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrConfig reports a configuration file or recent installation log that
// could not be read or written. Op names what was attempted.
type ErrConfig struct {
	Op    string
	Cause error
}

func (e *ErrConfig) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("configuration: %v", e.Cause)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Op, e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}
