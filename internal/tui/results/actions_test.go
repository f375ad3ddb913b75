package results

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/studiodb/internal/database"
)

func sampleResult() *database.QueryResult {
	total := int64(2)
	return &database.QueryResult{
		Kind:    database.Read,
		Columns: []string{"ID", "post_title", "post_excerpt"},
		Rows: []database.Row{
			{"ID": int64(1), "post_title": "Hello, world", "post_excerpt": nil},
			{"ID": int64(2), "post_title": "It's here", "post_excerpt": []byte("short")},
		},
		Total: &total,
	}
}

func TestRowToJSON(t *testing.T) {
	res := sampleResult()
	assert.Equal(t,
		`{"ID": 1, "post_title": "Hello, world", "post_excerpt": null}`,
		rowToJSON(res.Columns, res.Rows[0]),
	)
	assert.Equal(t,
		`{"ID": 2, "post_title": "It's here", "post_excerpt": "short"}`,
		rowToJSON(res.Columns, res.Rows[1]),
	)
}

func TestCondition(t *testing.T) {
	assert.Equal(t, `"post_excerpt" IS NULL`, condition("post_excerpt", nil))
	assert.Equal(t, `"ID" = 7`, condition("ID", int64(7)))
	assert.Equal(t, `"post_title" = 'It''s here'`, condition("post_title", "It's here"))
	assert.Equal(t, `"data" = x'FF00'`, condition("data", []byte{0xff, 0x00}))
}

func TestExtractTableName(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "SELECT * FROM wp_posts WHERE ID = 1", want: "wp_posts"},
		{query: `select * from "wp_options";`, want: "wp_options"},
		{query: "UPDATE wp_users SET user_login = 'x'", want: "wp_users"},
		{query: "SELECT 1", want: ""},
		{query: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTableName(tt.query))
		})
	}
}

func TestModel_FilterUsesBrowsedTable(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetPage(Browse{Table: "wp_posts", Page: 1, PageSize: 50}, sampleResult())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	require.NotNil(t, cmd)

	msg, ok := cmd().(SetEditorQueryMsg)
	require.True(t, ok)
	assert.Equal(t, `SELECT * FROM "wp_posts" WHERE "post_title" = 'Hello, world'`, msg.Query)
}

func TestModel_SortKeyRequestsFirstPage(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetPage(Browse{Table: "wp_posts", Page: 2, PageSize: 1}, sampleResult())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.NotNil(t, cmd)

	msg, ok := cmd().(FetchPageMsg)
	require.True(t, ok)
	assert.Equal(t, 1, msg.Request.Page)
	assert.Equal(t, "ID", msg.Request.SortColumn)
	assert.Equal(t, database.SortAsc, msg.Request.SortDirection)
}

func TestModel_EditOnlyWhenBrowsing(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetResult("SELECT * FROM wp_posts", sampleResult())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m.SetPage(Browse{Table: "wp_posts", Page: 1, PageSize: 50}, sampleResult())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(EditRecordMsg)
	require.True(t, ok)
	assert.Equal(t, "wp_posts", msg.Table)
	assert.Equal(t, int64(2), msg.Row["ID"])
}

func TestModel_ViewShowsPaging(t *testing.T) {
	m := New()
	m.SetSize(120, 20)
	m.SetPage(Browse{Table: "wp_posts", Page: 1, PageSize: 1, SortColumn: "ID", SortDirection: database.SortDesc}, sampleResult())

	view := m.View()
	assert.Contains(t, view, "page 1/2")
	assert.Contains(t, view, "ID ▼")
}
