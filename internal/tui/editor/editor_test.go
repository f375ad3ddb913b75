package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/studiodb/internal/database"
)

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestEditor_HistoryRecall(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetHistory([]string{"SELECT 3", "SELECT 2", "SELECT 1"})
	m.SetQuery("SELECT * FROM wp_")

	m, _ = m.Update(keyMsg(tea.KeyCtrlP))
	assert.Equal(t, "SELECT 3", m.Value())
	m, _ = m.Update(keyMsg(tea.KeyCtrlP))
	m, _ = m.Update(keyMsg(tea.KeyCtrlP))
	assert.Equal(t, "SELECT 1", m.Value())

	m, _ = m.Update(keyMsg(tea.KeyCtrlP))
	assert.Equal(t, "SELECT 1", m.Value(), "stops at the oldest entry")

	m, _ = m.Update(keyMsg(tea.KeyCtrlN))
	m, _ = m.Update(keyMsg(tea.KeyCtrlN))
	m, _ = m.Update(keyMsg(tea.KeyCtrlN))
	assert.Equal(t, "SELECT * FROM wp_", m.Value(), "the draft comes back")
}

func TestEditor_Execute(t *testing.T) {
	m := New()
	m.SetFocused(true)

	_, cmd := m.Update(keyMsg(tea.KeyCtrlE))
	assert.Nil(t, cmd, "blank editor executes nothing")

	m.SetQuery("  SELECT 1  \n")
	_, cmd = m.Update(keyMsg(tea.KeyCtrlE))
	require.NotNil(t, cmd)
	assert.Equal(t, ExecuteQueryMsg{Query: "SELECT 1"}, cmd())
}

func TestEditor_Completion(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTableNames([]string{"wp_options", "wp_posts", "wp_postmeta"})

	m.SetQuery("SELECT * FROM wp_po")
	assert.True(t, m.CompletionActive())

	m, _ = m.Update(keyMsg(tea.KeyTab))
	assert.Equal(t, "SELECT * FROM wp_posts", m.Value())
	m, _ = m.Update(keyMsg(tea.KeyTab))
	assert.Equal(t, "SELECT * FROM wp_postmeta", m.Value())

	m.SetQuery("SELECT wp_po")
	assert.False(t, m.CompletionActive(), "outside a table context")

	m.SetQuery("SELECT * FROM wp_options")
	assert.False(t, m.CompletionActive(), "already complete")

	m.SetQuery("SELECT * FROM wp_po ")
	assert.False(t, m.CompletionActive(), "word already ended")

	m.SetQuery("SELECT * FROM wp_posts WHERE post_title = 'wp_po")
	assert.False(t, m.CompletionActive(), "inside a string literal")

	m.SetQuery("SELECT * FROM wp_posts -- wp_po")
	assert.False(t, m.CompletionActive(), "inside a comment")
}

func postsSchema() database.TableSchema {
	return database.TableSchema{
		Table: "wp_posts",
		Columns: []database.Column{
			{Name: "ID", PrimaryKey: true},
			{Name: "post_title"},
			{Name: "post_status"},
			{Name: "post_type"},
		},
	}
}

func TestEditor_ColumnCompletion(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTableNames([]string{"wp_options", "wp_posts", "wp_postmeta"})

	m.SetQuery("SELECT * FROM wp_posts WHERE post_st")
	assert.False(t, m.CompletionActive(), "columns not described yet")

	cmd := m.requestColumns()
	require.NotNil(t, cmd)
	assert.Equal(t, ColumnsNeededMsg{Table: "wp_posts"}, cmd())
	assert.Nil(t, m.requestColumns(), "asked once per table")

	m.SetColumns(postsSchema())
	require.True(t, m.CompletionActive())
	m, _ = m.Update(keyMsg(tea.KeyTab))
	assert.Equal(t, "SELECT * FROM wp_posts WHERE post_status", m.Value())

	m.SetQuery("UPDATE wp_posts SET post_t")
	m, _ = m.Update(keyMsg(tea.KeyTab))
	assert.Equal(t, "UPDATE wp_posts SET post_title", m.Value())
	assert.Contains(t, m.View(), "columns:")
	m, _ = m.Update(keyMsg(tea.KeyTab))
	assert.Equal(t, "UPDATE wp_posts SET post_type", m.Value())

	m.SetQuery("SELECT * FROM wp_posts p ORDER BY p.post_ti")
	m, _ = m.Update(keyMsg(tea.KeyTab))
	assert.Equal(t, "SELECT * FROM wp_posts p ORDER BY p.post_title", m.Value())

	m.SetQuery("SELECT * FROM wp_options WHERE post_")
	assert.False(t, m.CompletionActive(), "columns of a table the statement does not name")

	m.SetTableNames([]string{"wp_options", "wp_posts"})
	m.SetQuery("SELECT * FROM wp_posts WHERE post_st")
	assert.False(t, m.CompletionActive(), "a new table list drops described columns")
}

func TestEditor_EscDismissesCompletion(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTableNames([]string{"wp_posts", "wp_postmeta"})
	m.SetQuery("SELECT * FROM wp_po")

	m, _ = m.Update(keyMsg(tea.KeyTab))
	require.Equal(t, "SELECT * FROM wp_posts", m.Value())
	m, _ = m.Update(keyMsg(tea.KeyEsc))
	assert.NotContains(t, m.View(), "tables:")

	m, _ = m.Update(keyMsg(tea.KeyTab))
	assert.Equal(t, "SELECT * FROM wp_posts", m.Value(), "a complete name starts no new completion")
}

func TestEditor_FormatKeywords(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetQuery("select post_title from wp_posts where post_status = 'select'")

	m, _ = m.Update(keyMsg(tea.KeyCtrlL))
	assert.Equal(t, "SELECT post_title FROM wp_posts WHERE post_status = 'select'", m.Value())
}
