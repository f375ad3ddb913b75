// Package history keeps two bounded, newest-first logs: the ad-hoc queries
// run during this session and the installations opened recently. Only the
// installation log is persisted.
package history

import (
	"sync"
	"time"

	"github.com/joacominatel/studiodb/internal/config"
)

const (
	// MaxQueries caps the session query log.
	MaxQueries = 50
	// MaxInstallations caps the recent installation log.
	MaxInstallations = 5
)

// Entry is one executed query.
type Entry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// InstallationPersister writes the installation log to durable storage.
type InstallationPersister interface {
	SaveInstallations([]config.Installation) error
}

// Store holds both logs. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	queries  []Entry
	installs []config.Installation
	persist  InstallationPersister
	now      func() time.Time
}

// NewStore creates a Store seeded with previously persisted installations.
// persist may be nil, in which case the installation log lives in memory only.
func NewStore(initial []config.Installation, persist InstallationPersister) *Store {
	s := &Store{
		persist: persist,
		now:     time.Now,
	}
	s.installs = truncate(dedupe(initial), MaxInstallations)
	return s
}

// RecordQuery prepends query to the query log.
func (s *Store) RecordQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = prepend(s.queries, Entry{Query: query, Timestamp: s.now()})
	s.queries = truncate(s.queries, MaxQueries)
}

// Queries returns the query log, newest first.
func (s *Store) Queries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.queries...)
}

// RecordInstallation moves inst to the front of the installation log with a
// fresh timestamp and persists the log.
func (s *Store) RecordInstallation(inst config.Installation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst.OpenedAt = s.now()
	s.installs = prepend(without(s.installs, inst.Root), inst)
	s.installs = truncate(s.installs, MaxInstallations)
	return s.save()
}

// RemoveInstallation deletes the entry for root, if any, and persists the log.
func (s *Store) RemoveInstallation(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.installs)
	s.installs = without(s.installs, root)
	if len(s.installs) == before {
		return nil
	}
	return s.save()
}

// Installations returns the installation log, newest first.
func (s *Store) Installations() []config.Installation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]config.Installation(nil), s.installs...)
}

// InstallationByPath finds the installation whose database path is dbPath.
func (s *Store) InstallationByPath(dbPath string) (config.Installation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range s.installs {
		if inst.DBPath == dbPath {
			return inst, true
		}
	}
	return config.Installation{}, false
}

func (s *Store) save() error {
	if s.persist == nil {
		return nil
	}
	return s.persist.SaveInstallations(append([]config.Installation(nil), s.installs...))
}

func prepend[T any](list []T, item T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...)
}

func truncate[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func without(list []config.Installation, root string) []config.Installation {
	out := list[:0:0]
	for _, inst := range list {
		if inst.Root != root {
			out = append(out, inst)
		}
	}
	return out
}

// dedupe keeps the first entry per root.
func dedupe(list []config.Installation) []config.Installation {
	seen := make(map[string]bool, len(list))
	var out []config.Installation
	for _, inst := range list {
		if seen[inst.Root] {
			continue
		}
		seen[inst.Root] = true
		out = append(out, inst)
	}
	return out
}
