package form

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/studiodb/internal/database"
)

func postsSchema() database.TableSchema {
	draft := "'draft'"
	return database.TableSchema{
		Table: "wp_posts",
		Columns: []database.Column{
			{Name: "ID", Type: "INTEGER", PrimaryKey: true, Position: 0},
			{Name: "post_title", Type: "TEXT", NotNull: true, Position: 1},
			{Name: "post_status", Type: "TEXT", Default: &draft, Position: 2},
			{Name: "menu_order", Type: "INTEGER", Position: 3},
		},
	}
}

func typeText(m Model, s string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func press(m Model, t tea.KeyType) Model {
	m, _ = m.Update(tea.KeyMsg{Type: t})
	return m
}

func TestEdit_UnchangedKeepsOriginalValues(t *testing.T) {
	row := database.Row{"ID": int64(7), "post_title": "Hello", "post_status": "publish", "menu_order": int64(3)}
	m := NewEdit(postsSchema(), row)

	assert.Equal(t, "wp_posts", m.Table())
	assert.False(t, m.Inserting())
	assert.Equal(t, database.Record{
		"ID":          int64(7),
		"post_title":  "Hello",
		"post_status": "publish",
		"menu_order":  int64(3),
	}, m.Record())
}

func TestEdit_KeySkippedAndChangesCollected(t *testing.T) {
	row := database.Row{"ID": int64(7), "post_title": "Hello", "post_status": "publish", "menu_order": nil}
	m := NewEdit(postsSchema(), row)

	// Focus starts on the first editable field.
	m = typeText(m, "!")
	m = press(m, tea.KeyTab)
	m = press(m, tea.KeyTab)
	m = typeText(m, "5")

	rec := m.Record()
	assert.Equal(t, int64(7), rec["ID"])
	assert.Equal(t, "Hello!", rec["post_title"])
	assert.Equal(t, "publish", rec["post_status"])
	assert.Equal(t, "5", rec["menu_order"])
}

func TestEdit_ToggleNull(t *testing.T) {
	row := database.Row{"ID": int64(7), "post_title": "Hello", "post_status": "publish", "menu_order": int64(3)}
	m := NewEdit(postsSchema(), row)

	m = press(m, tea.KeyTab)
	m = press(m, tea.KeyCtrlU)

	rec := m.Record()
	require.Contains(t, rec, "post_status")
	assert.Nil(t, rec["post_status"])
}

func TestInsert_UntouchedFieldsLeftOut(t *testing.T) {
	m := NewInsert(postsSchema())
	assert.True(t, m.Inserting())

	// The key is editable on insert.
	m = press(m, tea.KeyTab)
	m = typeText(m, "New post")

	assert.Equal(t, database.Record{"post_title": "New post"}, m.Record())
}

func TestSaveAndCancel(t *testing.T) {
	m := NewInsert(postsSchema())
	m = press(m, tea.KeyTab)
	m = typeText(m, "x")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	save, ok := cmd().(SaveMsg)
	require.True(t, ok)
	assert.Equal(t, "wp_posts", save.Table)
	assert.True(t, save.Insert)
	assert.Equal(t, database.Record{"post_title": "x"}, save.Record)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, CancelMsg{}, cmd())
}

func TestView_MarksKeyAndNull(t *testing.T) {
	row := database.Row{"ID": int64(7), "post_title": "Hello", "post_status": nil, "menu_order": int64(3)}
	m := NewEdit(postsSchema(), row)
	m.SetSize(100, 20)

	view := m.View()
	assert.Contains(t, view, "Edit record in wp_posts")
	assert.Contains(t, view, "7 (key)")
	assert.Contains(t, view, "NULL")
}
