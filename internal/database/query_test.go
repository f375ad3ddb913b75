package database_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/studiodb/internal/database"
)

func ids(rows []database.Row, col string) []int64 {
	out := make([]int64, len(rows))
	for i, row := range rows {
		out[i] = row[col].(int64)
	}
	return out
}

func TestExecutor_FetchPage(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	res, err := f.exec.FetchPage(ctx, database.PageRequest{Table: "wp_posts", Page: 1, PageSize: 50})
	require.NoError(t, err)

	assert.Equal(t, database.Read, res.Kind)
	assert.Equal(t, []string{"ID", "post_title", "post_status", "menu_order"}, res.Columns)
	assert.Len(t, res.Rows, 50)
	require.NotNil(t, res.Total)
	assert.EqualValues(t, postCount, *res.Total)
	assert.Equal(t, 3, res.TotalPages(50))

	last, err := f.exec.FetchPage(ctx, database.PageRequest{Table: "wp_posts", Page: 3, PageSize: 50})
	require.NoError(t, err)
	assert.Len(t, last.Rows, postCount-100)

	past, err := f.exec.FetchPage(ctx, database.PageRequest{Table: "wp_posts", Page: 9, PageSize: 50})
	require.NoError(t, err)
	assert.Empty(t, past.Rows)
	assert.EqualValues(t, postCount, *past.Total)
}

func TestExecutor_FetchPageDisjointPages(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	req := database.PageRequest{Table: "wp_terms", PageSize: 50, SortColumn: "name"}

	req.Page = 1
	first, err := f.exec.FetchPage(ctx, req)
	require.NoError(t, err)
	req.Page = 2
	second, err := f.exec.FetchPage(ctx, req)
	require.NoError(t, err)

	seen := make(map[int64]bool)
	for _, id := range append(ids(first.Rows, "term_id"), ids(second.Rows, "term_id")...) {
		assert.False(t, seen[id], "row %d returned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, termCount)
}

func TestExecutor_FetchPageSortOrder(t *testing.T) {
	f := setupFixture(t)

	asc := fetchAll(t, f, database.PageRequest{Table: "wp_posts", SortColumn: "menu_order", SortDirection: database.SortAsc})
	desc := fetchAll(t, f, database.PageRequest{Table: "wp_posts", SortColumn: "menu_order", SortDirection: database.SortDesc})
	require.Len(t, asc, postCount)
	require.Len(t, desc, postCount)

	orders := ids(asc, "menu_order")
	for i := 1; i < len(orders); i++ {
		assert.LessOrEqual(t, orders[i-1], orders[i])
	}

	ascIDs := ids(asc, "ID")
	descIDs := ids(desc, "ID")
	for i := range ascIDs {
		assert.Equal(t, ascIDs[i], descIDs[len(descIDs)-1-i])
	}
}

func TestExecutor_FetchPageInvalidRequests(t *testing.T) {
	f := setupFixture(t)

	tests := []struct {
		name    string
		req     database.PageRequest
		wantErr error
	}{
		{
			name:    "unknown table",
			req:     database.PageRequest{Table: "wp_missing"},
			wantErr: database.ErrSchemaNotFound,
		},
		{
			name:    "unknown sort column",
			req:     database.PageRequest{Table: "wp_posts", SortColumn: "nope"},
			wantErr: database.ErrInvalidIdentifier,
		},
		{
			name:    "injected sort column",
			req:     database.PageRequest{Table: "wp_posts", SortColumn: "ID; DROP TABLE wp_posts"},
			wantErr: database.ErrInvalidIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.exec.FetchPage(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecutor_FetchPageClampsPageSize(t *testing.T) {
	f := setupFixture(t)

	res, err := f.exec.FetchPage(context.Background(), database.PageRequest{Table: "wp_posts", Page: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Len(t, res.Rows, database.DefaultPageSize)
}

func TestExecutor_FetchPageHugePage(t *testing.T) {
	f := setupFixture(t)

	for _, page := range []int{math.MaxInt/50 + 2, math.MaxInt} {
		req := database.PageRequest{Table: "wp_posts", Page: page, PageSize: 50}
		assert.Positive(t, req.Offset(), "page %d", page)

		res, err := f.exec.FetchPage(context.Background(), req)
		require.NoError(t, err, "page %d", page)
		assert.Empty(t, res.Rows)
		require.NotNil(t, res.Total)
		assert.EqualValues(t, postCount, *res.Total)
	}
}

func TestExecutor_ExecuteRead(t *testing.T) {
	f := setupFixture(t)

	res, err := f.exec.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, database.Read, res.Kind)
	assert.Equal(t, []string{"1"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, [][]string{{"1"}}, res.Strings())
	assert.Nil(t, res.Total)
}

func TestExecutor_ExecuteReadNoRows(t *testing.T) {
	f := setupFixture(t)

	res, err := f.exec.Execute(context.Background(), "SELECT * FROM wp_posts WHERE ID < 0")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.NotNil(t, res.Columns)
	assert.Empty(t, res.Columns)
}

func TestExecutor_ExecuteWrite(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	res, err := f.exec.Execute(ctx, "UPDATE wp_posts SET menu_order = 1 WHERE 0")
	require.NoError(t, err)
	assert.Equal(t, database.Write, res.Kind)
	assert.Equal(t, []string{"Changes"}, res.Columns)
	assert.EqualValues(t, 0, res.Changes)
	assert.Nil(t, res.LastInsertID)

	res, err = f.exec.Execute(ctx, "UPDATE wp_posts SET menu_order = 99 WHERE menu_order = 0")
	require.NoError(t, err)
	assert.EqualValues(t, postCount/7, res.Changes)
	assert.Equal(t, [][]string{{fmt.Sprint(postCount / 7)}}, res.Strings())

	res, err = f.exec.Execute(ctx, "INSERT INTO wp_terms (name, slug) VALUES ('New', 'new')")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Changes)
	require.NotNil(t, res.LastInsertID)
	assert.EqualValues(t, termCount+1, *res.LastInsertID)
}

func TestExecutor_ExecuteErrors(t *testing.T) {
	f := setupFixture(t)

	tests := []struct {
		name string
		sql  string
	}{
		{name: "empty", sql: "   "},
		{name: "syntax", sql: "SELEC * FROM wp_posts"},
		{name: "unknown table", sql: "SELECT * FROM wp_missing"},
		{name: "constraint", sql: "INSERT INTO wp_terms (term_id, name) VALUES (1, 'dup')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.exec.Execute(context.Background(), tt.sql)
			var sqlErr *database.SQLError
			require.ErrorAs(t, err, &sqlErr)
			assert.NotEmpty(t, sqlErr.Error())
		})
	}

	assert.Empty(t, f.recorded.queries, "failed statements are not recorded")
}

func TestExecutor_ExecuteEngineMessage(t *testing.T) {
	f := setupFixture(t)

	_, err := f.exec.Execute(context.Background(), "SELECT * FROM wp_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table: wp_missing")
}

func TestExecutor_ExecuteRecordsHistory(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.exec.Execute(ctx, "SELECT 1")
	require.NoError(t, err)
	_, err = f.exec.Execute(ctx, "UPDATE wp_posts SET menu_order = 1 WHERE 0")
	require.NoError(t, err)

	assert.Equal(t, []string{"SELECT 1", "UPDATE wp_posts SET menu_order = 1 WHERE 0"}, f.recorded.queries)
}

func TestExecutor_NoActiveConnection(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, f.conns.Close())

	_, err := f.exec.Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, database.ErrNoActiveConnection)

	_, err = f.exec.FetchPage(context.Background(), database.PageRequest{Table: "wp_posts"})
	assert.ErrorIs(t, err, database.ErrNoActiveConnection)
}
