package explorer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/studiodb/internal/database"
	"github.com/joacominatel/studiodb/internal/tui/theme"
)

// NodeKind identifies the type of a tree node.
type NodeKind int

const (
	NodeTable NodeKind = iota
	NodeColumn
)

// TreeNode represents a single node in the table tree.
type TreeNode struct {
	Kind     NodeKind
	Name     string
	Children []*TreeNode
	Expanded bool
	Loaded   bool // whether columns have been fetched

	Table  string // parent table name (for columns)
	Column database.Column
}

// flatItem is a visible item in the flattened tree view.
type flatItem struct {
	node  *TreeNode
	depth int
}

// BrowseTableMsg asks the app to page through a table.
type BrowseTableMsg struct {
	Table string
}

// NewRecordMsg asks the app to open an empty record form for a table.
type NewRecordMsg struct {
	Table string
}

// Model is the explorer (table list) component.
type Model struct {
	tables  []*TreeNode
	items   []flatItem
	cursor  int
	width   int
	height  int
	focused bool
	loading bool
}

// New creates a new explorer model.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the explorer has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetTables replaces the table list. Expanded tables stay expanded and are
// asked to reload their columns.
func (m *Model) SetTables(names []string) tea.Cmd {
	expanded := make(map[string]bool)
	for _, t := range m.tables {
		if t.Expanded {
			expanded[t.Name] = true
		}
	}

	m.tables = make([]*TreeNode, 0, len(names))
	var cmds []tea.Cmd
	for _, name := range names {
		node := &TreeNode{Kind: NodeTable, Name: name}
		if expanded[name] {
			node.Expanded = true
			cmds = append(cmds, requestColumns(name))
		}
		m.tables = append(m.tables, node)
	}

	m.flatten()
	m.loading = false
	return tea.Batch(cmds...)
}

// Tables returns the listed table names.
func (m Model) Tables() []string {
	names := make([]string, len(m.tables))
	for i, t := range m.tables {
		names[i] = t.Name
	}
	return names
}

// Clear empties the explorer.
func (m *Model) Clear() {
	m.tables = nil
	m.items = nil
	m.cursor = 0
}

// SetColumns adds column nodes to a table node.
func (m *Model) SetColumns(schema database.TableSchema) {
	for _, t := range m.tables {
		if t.Name != schema.Table {
			continue
		}
		t.Children = nil
		for _, col := range schema.Columns {
			t.Children = append(t.Children, &TreeNode{
				Kind:   NodeColumn,
				Name:   col.Name,
				Table:  schema.Table,
				Column: col,
			})
		}
		t.Loaded = true
	}
	m.flatten()
}

// SelectedTable returns the table under the cursor, if any.
func (m Model) SelectedTable() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return "", false
	}
	node := m.items[m.cursor].node
	if node.Kind == NodeColumn {
		return node.Table, true
	}
	return node.Name, true
}

// flatten rebuilds the flat item list from the tree.
func (m *Model) flatten() {
	m.items = nil
	for _, t := range m.tables {
		m.items = append(m.items, flatItem{node: t})
		if t.Expanded {
			for _, c := range t.Children {
				m.items = append(m.items, flatItem{node: c, depth: 1})
			}
		}
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

// Update handles messages for the explorer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "right", "l":
			return m, m.toggleExpand()
		case "left", "h":
			m.collapse()
		case "enter", "b":
			if table, ok := m.SelectedTable(); ok {
				return m, func() tea.Msg { return BrowseTableMsg{Table: table} }
			}
		case "n":
			if table, ok := m.SelectedTable(); ok {
				return m, func() tea.Msg { return NewRecordMsg{Table: table} }
			}
		}
	}

	return m, nil
}

func (m *Model) toggleExpand() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	node := m.items[m.cursor].node
	if node.Kind == NodeColumn {
		return nil
	}

	node.Expanded = !node.Expanded
	m.flatten()

	if node.Expanded && !node.Loaded {
		return requestColumns(node.Name)
	}
	return nil
}

func (m *Model) collapse() {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return
	}
	node := m.items[m.cursor].node
	if node.Kind == NodeColumn {
		// Jump back to the parent table.
		for i := m.cursor; i >= 0; i-- {
			if m.items[i].node.Kind == NodeTable {
				m.cursor = i
				node = m.items[i].node
				break
			}
		}
	}
	if node.Expanded {
		node.Expanded = false
		m.flatten()
	}
}

// requestColumnsMsg is sent when a table is expanded and needs column data.
type requestColumnsMsg struct {
	Table string
}

func requestColumns(table string) tea.Cmd {
	return func() tea.Msg { return requestColumnsMsg{Table: table} }
}

// IsRequestColumnsMsg reports whether msg asks for the columns of a table.
func IsRequestColumnsMsg(msg tea.Msg) (table string, ok bool) {
	if m, ok := msg.(requestColumnsMsg); ok {
		return m.Table, true
	}
	return "", false
}

// View renders the explorer.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Tables")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}
	if len(m.tables) == 0 {
		return title + "\n" + theme.StyleMuted.Render("  No tables")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	visibleHeight := m.height - 2
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	scrollOffset := 0
	if m.cursor >= visibleHeight {
		scrollOffset = m.cursor - visibleHeight + 1
	}

	for i := scrollOffset; i < len(m.items) && i < scrollOffset+visibleHeight; i++ {
		b.WriteString(m.renderNode(m.items[i], i == m.cursor))
		if i < scrollOffset+visibleHeight-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderNode(item flatItem, selected bool) string {
	node := item.node
	indent := strings.Repeat("  ", item.depth)

	var line, detail string
	switch node.Kind {
	case NodeTable:
		icon := "▶ "
		if node.Expanded {
			icon = "▼ "
		}
		line = indent + icon + node.Name
	case NodeColumn:
		line = indent + "  " + node.Name
		detail = " " + columnDetail(node.Column)
	}

	// Truncate plain text before styling so escape codes are never cut.
	limit := m.width - 2
	if limit > 2 && lipgloss.Width(line+detail) > limit {
		full := []rune(line + detail)
		for len(full) > 0 && lipgloss.Width(string(full)) > limit-2 {
			full = full[:len(full)-1]
		}
		if len(full) <= len([]rune(line)) {
			line, detail = string(full)+"..", ""
		} else {
			detail = string(full[len([]rune(line)):]) + ".."
		}
	}

	if selected {
		return theme.StyleSelected.Render(line + detail)
	}
	return line + theme.StyleMuted.Render(detail)
}

// columnDetail summarizes type, nullability and key flags.
func columnDetail(c database.Column) string {
	parts := []string{}
	if c.Type != "" {
		parts = append(parts, c.Type)
	}
	if c.PrimaryKey {
		parts = append(parts, "PK")
	}
	if c.NotNull {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}
