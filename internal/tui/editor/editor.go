// Package editor is the SQL pane: a multi-line input with keyword
// formatting, table and column completion, and recall of executed
// statements.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/studiodb/internal/database"
	"github.com/joacominatel/studiodb/internal/tui/theme"
)

// ExecuteQueryMsg asks the application to run Query.
type ExecuteQueryMsg struct {
	Query string
}

// ColumnsNeededMsg asks the application to describe Table so its columns
// can be offered for completion. Answer with SetColumns.
type ColumnsNeededMsg struct {
	Table string
}

type keyMap struct {
	Execute  key.Binding
	Clear    key.Binding
	Older    key.Binding
	Newer    key.Binding
	Format   key.Binding
	Complete key.Binding
	Dismiss  key.Binding
}

var keys = keyMap{
	Execute:  key.NewBinding(key.WithKeys("ctrl+e", "f5"), key.WithHelp("ctrl+e", "run")),
	Clear:    key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "clear")),
	Older:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "previous statement")),
	Newer:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next statement")),
	Format:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "format")),
	Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
	Dismiss:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
}

// maxShownOptions bounds the completion line under the input.
const maxShownOptions = 6

type completion struct {
	target  target
	prefix  string
	options []string
	current int
}

// Model is the SQL editor pane.
type Model struct {
	input   textarea.Model
	width   int
	height  int
	focused bool

	tables    []string
	columns   map[string][]string
	requested map[string]bool
	comp      completion

	history   []string // newest first
	histIndex int      // -1 while editing the draft
	draft     string
}

// New creates an empty editor.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "SELECT option_name, option_value FROM wp_options WHERE autoload = 'yes'"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.FocusedStyle = textarea.Style{
		Placeholder: theme.StyleMuted,
		Prompt:      lipgloss.NewStyle().Foreground(theme.ColorPrimary),
	}
	ta.BlurredStyle = textarea.Style{
		Placeholder: theme.StyleMuted,
		Prompt:      lipgloss.NewStyle().Foreground(theme.ColorBorder),
		Text:        theme.StyleMuted,
	}
	ta.Blur()

	return Model{
		input:     ta,
		columns:   make(map[string][]string),
		requested: make(map[string]bool),
		histIndex: -1,
	}
}

// SetSize sets the outer dimensions, border included.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.input.SetWidth(w - 2)
	m.input.SetHeight(h - 2)
}

func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.input.Focus()
		return
	}
	m.input.Blur()
}

func (m Model) Focused() bool {
	return m.focused
}

func (m Model) Value() string {
	return m.input.Value()
}

// SetQuery replaces the text, leaving history recall.
func (m *Model) SetQuery(query string) {
	m.input.SetValue(query)
	m.histIndex = -1
	m.dismiss()
}

// SetTableNames replaces the tables offered for completion. Column lists
// gathered for the previous set are discarded, since the schema may have
// changed.
func (m *Model) SetTableNames(names []string) {
	m.tables = names
	m.columns = make(map[string][]string)
	m.requested = make(map[string]bool)
}

// SetColumns records the columns of schema.Table for completion.
func (m *Model) SetColumns(schema database.TableSchema) {
	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	m.columns[schema.Table] = names
	delete(m.requested, schema.Table)
}

// SetHistory replaces the recallable statements, newest first.
func (m *Model) SetHistory(queries []string) {
	m.history = queries
	m.histIndex = -1
}

func (m *Model) Clear() {
	m.input.Reset()
	m.histIndex = -1
	m.dismiss()
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles input while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Execute):
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}
			m.dismiss()
			return m, func() tea.Msg { return ExecuteQueryMsg{Query: query} }
		case key.Matches(msg, keys.Clear):
			m.Clear()
			return m, nil
		case key.Matches(msg, keys.Older):
			m.recall(1)
			return m, nil
		case key.Matches(msg, keys.Newer):
			m.recall(-1)
			return m, nil
		case key.Matches(msg, keys.Format):
			if v := m.input.Value(); v != "" {
				m.input.SetValue(formatSQL(v))
			}
			return m, nil
		case key.Matches(msg, keys.Complete):
			if m.complete() {
				return m, m.requestColumns()
			}
		case key.Matches(msg, keys.Dismiss):
			if len(m.comp.options) > 0 {
				m.dismiss()
				return m, nil
			}
		default:
			m.dismiss()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, tea.Batch(cmd, m.requestColumns())
}

// recall steps through history: 1 is older, -1 newer. Stepping past the
// newest entry restores the draft.
func (m *Model) recall(step int) {
	if len(m.history) == 0 {
		return
	}
	if m.histIndex == -1 {
		m.draft = m.input.Value()
	}

	next := m.histIndex + step
	switch {
	case next >= len(m.history):
		return
	case next < 0:
		m.histIndex = -1
		m.input.SetValue(m.draft)
		return
	}
	m.histIndex = next
	m.input.SetValue(m.history[next])
	m.dismiss()
}

// CompletionActive reports whether Tab completes the word being typed
// rather than moving to the next pane.
func (m Model) CompletionActive() bool {
	if len(m.comp.options) > 0 {
		return true
	}
	_, options := m.candidates()
	return len(options) > 0
}

// candidates returns table names after FROM, JOIN, INTO or UPDATE, and
// columns of the tables the statement names elsewhere.
func (m Model) candidates() (pending, []string) {
	p, ok := analyze(m.input.Value(), m.tables)
	if !ok {
		return p, nil
	}
	var pool []string
	switch p.target {
	case targetTable:
		pool = m.tables
	case targetColumn:
		for _, t := range p.tables {
			pool = append(pool, m.columns[t]...)
		}
	}
	return p, matching(pool, p.word)
}

// complete fills in the first candidate, or the next one when Tab is
// pressed again.
func (m *Model) complete() bool {
	if len(m.comp.options) > 0 {
		m.comp.current = (m.comp.current + 1) % len(m.comp.options)
	} else {
		p, options := m.candidates()
		if len(options) == 0 {
			return false
		}
		m.comp = completion{target: p.target, prefix: p.prefix, options: options}
	}
	m.input.SetValue(m.comp.prefix + m.comp.options[m.comp.current])
	return true
}

func (m *Model) dismiss() {
	m.comp = completion{}
}

// requestColumns asks for the columns of each named table not yet described.
func (m *Model) requestColumns() tea.Cmd {
	var cmds []tea.Cmd
	for _, table := range statementTables(m.input.Value(), m.tables) {
		if _, known := m.columns[table]; known || m.requested[table] {
			continue
		}
		m.requested[table] = true
		cmds = append(cmds, func() tea.Msg { return ColumnsNeededMsg{Table: table} })
	}
	return tea.Batch(cmds...)
}

func (m Model) View() string {
	header := theme.StyleTitle.Render("SQL")
	if m.histIndex >= 0 {
		header += theme.StyleMuted.Render(fmt.Sprintf("recalled %d of %d", m.histIndex+1, len(m.history)))
	}

	out := header + "\n" + m.input.View()
	if len(m.comp.options) > 1 {
		out += "\n" + m.completionLine()
	}
	return out
}

func (m Model) completionLine() string {
	label := "tables"
	if m.comp.target == targetColumn {
		label = "columns"
	}

	opts := m.comp.options
	start := max(0, m.comp.current-maxShownOptions+1)
	end := min(len(opts), start+maxShownOptions)
	parts := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		style := theme.StyleMuted
		if i == m.comp.current {
			style = theme.StyleSelected
		}
		parts = append(parts, style.Render(opts[i]))
	}
	if rest := len(opts) - end; rest > 0 {
		parts = append(parts, theme.StyleMuted.Render(fmt.Sprintf("+%d", rest)))
	}
	return " " + theme.StyleMuted.Render(label+":") + " " + strings.Join(parts, " ")
}
