package database_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joacominatel/studiodb/internal/database"
	"github.com/joacominatel/studiodb/internal/database/sqlite"
	"github.com/joacominatel/studiodb/internal/logging"
)

const (
	postCount = 120
	termCount = 80
)

// createTestDatabase writes a small WordPress-like database and returns its path.
func createTestDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".ht.sqlite")
	db, err := sql.Open(sqlite.DriverName, path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE wp_posts (
			ID INTEGER PRIMARY KEY AUTOINCREMENT,
			post_title TEXT NOT NULL DEFAULT '',
			post_status TEXT DEFAULT 'draft',
			menu_order INTEGER
		)`,
		`CREATE TABLE wp_terms (
			term_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT
		)`,
		`CREATE TABLE wp_options (
			option_name TEXT,
			option_value TEXT
		)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	for i := 1; i <= postCount; i++ {
		_, err := db.Exec(
			`INSERT INTO wp_posts (post_title, post_status, menu_order) VALUES (?, ?, ?)`,
			fmt.Sprintf("Post %03d", i), "publish", i%7,
		)
		require.NoError(t, err)
	}
	for i := 1; i <= termCount; i++ {
		_, err := db.Exec(
			`INSERT INTO wp_terms (term_id, name, slug) VALUES (?, ?, ?)`,
			i, fmt.Sprintf("Term %02d", i), fmt.Sprintf("term-%02d", i),
		)
		require.NoError(t, err)
	}
	_, err = db.Exec(`INSERT INTO wp_options (option_name, option_value) VALUES ('siteurl', 'http://localhost:8881')`)
	require.NoError(t, err)

	return path
}

// recorder collects executed queries.
type recorder struct {
	queries []string
}

func (r *recorder) RecordQuery(q string) {
	r.queries = append(r.queries, q)
}

type fixture struct {
	path     string
	conns    *database.Manager
	schema   *database.Inspector
	exec     *database.Executor
	mutate   *database.Mutator
	recorded *recorder
}

// setupFixture opens a fresh test database through the SQLite driver.
func setupFixture(t *testing.T) *fixture {
	t.Helper()

	log := logging.Discard()
	path := createTestDatabase(t)
	conns := database.NewManager(sqlite.Open, log)
	_, err := conns.Open(context.Background(), path, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Close() })

	rec := &recorder{}
	return &fixture{
		path:     path,
		conns:    conns,
		schema:   database.NewInspector(conns),
		exec:     database.NewExecutor(conns, rec, log),
		mutate:   database.NewMutator(conns, log),
		recorded: rec,
	}
}

// fetchAll reads a whole table in one page.
func fetchAll(t *testing.T, f *fixture, req database.PageRequest) []database.Row {
	t.Helper()
	req.Page = 1
	req.PageSize = database.MaxPageSize
	res, err := f.exec.FetchPage(context.Background(), req)
	require.NoError(t, err)
	return res.Rows
}
