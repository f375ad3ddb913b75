package explorer

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/studiodb/internal/database"
)

func press(m Model, s string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch s {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	return m.Update(msg)
}

func TestExplorer_ExpandRequestsColumns(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTables([]string{"wp_options", "wp_posts"})
	assert.Equal(t, []string{"wp_options", "wp_posts"}, m.Tables())

	m, cmd := press(m, "right")
	require.NotNil(t, cmd)
	table, ok := IsRequestColumnsMsg(cmd())
	require.True(t, ok)
	assert.Equal(t, "wp_options", table)

	m.SetColumns(database.TableSchema{
		Table: "wp_options",
		Columns: []database.Column{
			{Name: "option_id", Type: "INTEGER", PrimaryKey: true},
			{Name: "option_name", Type: "TEXT", NotNull: true},
		},
	})

	// A column row still selects its table.
	m, _ = press(m, "down")
	selected, ok := m.SelectedTable()
	require.True(t, ok)
	assert.Equal(t, "wp_options", selected)

	m, _ = press(m, "left")
	m, _ = press(m, "down")
	selected, _ = m.SelectedTable()
	assert.Equal(t, "wp_posts", selected, "collapsing hides the columns")
}

func TestExplorer_BrowseAndNew(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTables([]string{"wp_posts"})

	_, cmd := press(m, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, BrowseTableMsg{Table: "wp_posts"}, cmd())

	_, cmd = press(m, "n")
	require.NotNil(t, cmd)
	assert.Equal(t, NewRecordMsg{Table: "wp_posts"}, cmd())
}

func TestExplorer_RefreshKeepsExpandedTables(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTables([]string{"wp_posts", "wp_users"})
	m, _ = press(m, "right")

	cmd := m.SetTables([]string{"wp_posts", "wp_users", "wp_comments"})
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, isBatch := msg.(tea.BatchMsg); isBatch {
		require.Len(t, batch, 1)
		msg = batch[0]()
	}
	table, ok := IsRequestColumnsMsg(msg)
	require.True(t, ok)
	assert.Equal(t, "wp_posts", table)
}

func TestExplorer_EmptyView(t *testing.T) {
	m := New()
	m.SetSize(30, 10)
	assert.Contains(t, m.View(), "No tables")

	assert.Equal(t, "TEXT PK NOT NULL", columnDetail(database.Column{Type: "TEXT", PrimaryKey: true, NotNull: true}))
}
