// Package form edits one table row, or a new one, field by field.
package form

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/studiodb/internal/database"
	"github.com/joacominatel/studiodb/internal/tui/theme"
)

// SaveMsg carries the record to write.
type SaveMsg struct {
	Table  string
	Record database.Record
	Insert bool
}

// CancelMsg closes the form without writing.
type CancelMsg struct{}

type field struct {
	column   database.Column
	input    textinput.Model
	original any
	null     bool
	locked   bool
}

// Model is the record form component.
type Model struct {
	table  string
	insert bool
	fields []field
	cursor int
	width  int
	height int
	err    error
}

// NewEdit builds a form over an existing row. The primary key cannot be
// changed since it identifies the row being written.
func NewEdit(schema database.TableSchema, row database.Row) Model {
	m := Model{table: schema.Table}
	for _, col := range schema.Columns {
		v := row[col.Name]
		f := newField(col)
		f.original = v
		f.null = v == nil
		if v != nil {
			f.input.SetValue(database.FormatValue(v))
		}
		f.locked = col.PrimaryKey
		m.fields = append(m.fields, f)
	}
	m.focusFirst()
	return m
}

// NewInsert builds an empty form for a new row of the table.
func NewInsert(schema database.TableSchema) Model {
	m := Model{table: schema.Table, insert: true}
	for _, col := range schema.Columns {
		f := newField(col)
		if col.Default != nil {
			f.input.Placeholder = "default " + *col.Default
		} else if col.PrimaryKey {
			f.input.Placeholder = "auto"
		}
		m.fields = append(m.fields, f)
	}
	m.focusFirst()
	return m
}

func newField(col database.Column) field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Width = 50
	ti.PlaceholderStyle = theme.StyleMuted
	return field{column: col, input: ti}
}

// Table returns the table being edited.
func (m Model) Table() string {
	return m.table
}

// Inserting reports whether the form creates a new row.
func (m Model) Inserting() bool {
	return m.insert
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	for i := range m.fields {
		m.fields[i].input.Width = max(10, w-30)
	}
}

// SetError shows a failed save under the form.
func (m *Model) SetError(err error) {
	m.err = err
}

// Record collects the form into a record. When editing, fields left as they
// were keep their original value and type, so nothing is rewritten by
// accident as text. When inserting, untouched fields are left out so the
// table defaults apply.
func (m Model) Record() database.Record {
	rec := make(database.Record, len(m.fields))
	for _, f := range m.fields {
		value := f.input.Value()
		switch {
		case m.insert && f.null:
			rec[f.column.Name] = nil
		case m.insert && value == "":
			continue
		case m.insert:
			rec[f.column.Name] = value
		case f.locked:
			rec[f.column.Name] = f.original
		case f.null:
			rec[f.column.Name] = nil
		case f.original != nil && value == database.FormatValue(f.original):
			rec[f.column.Name] = f.original
		default:
			rec[f.column.Name] = value
		}
	}
	return rec
}

func (m *Model) focusFirst() {
	m.cursor = -1
	m.move(1)
}

// move shifts focus to the next editable field in direction step.
func (m *Model) move(step int) {
	n := len(m.fields)
	if n == 0 {
		return
	}
	if m.cursor >= 0 && m.cursor < n {
		m.fields[m.cursor].input.Blur()
	}
	next := m.cursor
	for i := 0; i < n; i++ {
		next = (next + step + n) % n
		if !m.fields[next].locked {
			m.cursor = next
			m.fields[next].input.Focus()
			return
		}
	}
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, func() tea.Msg { return CancelMsg{} }
		case "ctrl+s":
			save := SaveMsg{Table: m.table, Record: m.Record(), Insert: m.insert}
			return m, func() tea.Msg { return save }
		case "tab", "down":
			m.move(1)
			return m, nil
		case "shift+tab", "up":
			m.move(-1)
			return m, nil
		case "ctrl+u":
			if m.cursor >= 0 && m.cursor < len(m.fields) {
				f := &m.fields[m.cursor]
				f.null = !f.null
				if f.null {
					f.input.SetValue("")
				}
			}
			return m, nil
		}
	}

	if m.cursor < 0 || m.cursor >= len(m.fields) {
		return m, nil
	}
	f := &m.fields[m.cursor]
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != "" {
		f.null = false
	}
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	verb := "Edit record"
	if m.insert {
		verb = "New record"
	}

	var b strings.Builder
	b.WriteString(theme.StyleTitle.Render(verb + " in " + m.table))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, f := range m.fields {
		labelWidth = max(labelWidth, lipgloss.Width(f.column.Name))
	}

	for i, f := range m.fields {
		label := fmt.Sprintf("%-*s", labelWidth, f.column.Name)
		if i == m.cursor {
			label = theme.StyleSelected.Render("> " + label)
		} else {
			label = "  " + label
		}

		var value string
		switch {
		case f.locked:
			value = theme.StyleMuted.Render(f.input.Value() + " (key)")
		case f.null && i != m.cursor:
			value = theme.StyleMuted.Render("NULL")
		case f.null:
			value = theme.StyleMuted.Render("NULL ") + f.input.View()
		default:
			value = f.input.View()
		}

		b.WriteString(label + "  " + value + "  " + theme.StyleMuted.Render(f.column.Type))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(theme.StyleError.Render("  Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.StyleMuted.Render("  Tab/↑↓: Field │ Ctrl+U: Toggle NULL │ Ctrl+S: Save │ Esc: Cancel"))
	return b.String()
}
