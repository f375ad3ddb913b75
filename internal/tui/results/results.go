package results

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/joacominatel/studiodb/internal/database"
	"github.com/joacominatel/studiodb/internal/tui/theme"
)

const maxColWidth = 40

// Model is the query results component. It shows either the result of an
// ad-hoc statement or a page of a browsed table.
type Model struct {
	result    *database.QueryResult
	cells     [][]string
	err       error
	width     int
	height    int
	focused   bool
	loading   bool
	colWidths []int

	scrollY int
	cursorX int
	cursorY int

	browse        *Browse
	lastQuery     string
	statusMessage string
}

// New creates a new results model.
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

// Focused returns whether the results pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetResult shows the result of an ad-hoc statement.
func (m *Model) SetResult(query string, r *database.QueryResult) {
	m.browse = nil
	m.lastQuery = query
	m.show(r)
}

// SetPage shows one page of a browsed table.
func (m *Model) SetPage(b Browse, r *database.QueryResult) {
	b.TotalPages = r.TotalPages(b.PageSize)
	m.browse = &b
	m.lastQuery = ""
	m.show(r)
}

// Browsing returns the browse state when a table page is shown.
func (m Model) Browsing() (Browse, bool) {
	if m.browse == nil {
		return Browse{}, false
	}
	return *m.browse, true
}

// Clear drops whatever is shown.
func (m *Model) Clear() {
	*m = Model{width: m.width, height: m.height, focused: m.focused}
}

func (m *Model) show(r *database.QueryResult) {
	m.result = r
	m.cells = r.Strings()
	m.err = nil
	m.scrollY = 0
	m.cursorY = 0
	if m.cursorX >= len(r.Columns) {
		m.cursorX = 0
	}
	m.loading = false
	m.statusMessage = ""
	m.calculateColumnWidths()
}

// SetError sets an error to display.
func (m *Model) SetError(err error) {
	m.err = err
	m.result = nil
	m.cells = nil
	m.scrollY = 0
	m.loading = false
}

// StatusMessage returns and clears the last action feedback.
func (m *Model) StatusMessage() string {
	msg := m.statusMessage
	m.statusMessage = ""
	return msg
}

func (m *Model) calculateColumnWidths() {
	if m.result == nil || len(m.result.Columns) == 0 {
		m.colWidths = nil
		return
	}

	m.colWidths = make([]int, len(m.result.Columns))

	// Use display width (not byte length) for accurate measurement
	for i, col := range m.result.Columns {
		m.colWidths[i] = lipgloss.Width(col) + 2 // room for the sort marker
	}
	for _, row := range m.cells {
		for i, cell := range row {
			w := lipgloss.Width(cell)
			if i < len(m.colWidths) && w > m.colWidths[i] {
				m.colWidths[i] = w
			}
		}
	}

	for i := range m.colWidths {
		if m.colWidths[i] < 1 {
			m.colWidths[i] = 1
		}
		if m.colWidths[i] > maxColWidth {
			m.colWidths[i] = maxColWidth
		}
	}
}

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	rows := len(m.cells)
	cols := 0
	if m.result != nil {
		cols = len(m.result.Columns)
	}

	switch key.String() {
	case "up", "k":
		if m.cursorY > 0 {
			m.cursorY--
		}
	case "down", "j":
		if m.cursorY < rows-1 {
			m.cursorY++
		}
	case "left", "h":
		if m.cursorX > 0 {
			m.cursorX--
		}
	case "right", "l":
		if m.cursorX < cols-1 {
			m.cursorX++
		}
	case "pgup":
		m.cursorY = max(0, m.cursorY-m.visibleRows())
	case "pgdown":
		m.cursorY = max(0, min(rows-1, m.cursorY+m.visibleRows()))
	case "home", "g":
		m.cursorY = 0
	case "end", "G":
		m.cursorY = max(0, rows-1)

	// Browsing
	case "]", "n":
		return m, m.pageCmd(Browse.Next)
	case "[", "p":
		return m, m.pageCmd(Browse.Prev)
	case "s":
		if m.browse != nil && m.cursorX < cols {
			next := m.browse.ToggleSort(m.result.Columns[m.cursorX])
			return m, fetch(next)
		}
	case "enter", "e":
		if m.browse != nil && m.cursorY < rows {
			table, row := m.browse.Table, m.result.Rows[m.cursorY]
			return m, func() tea.Msg { return EditRecordMsg{Table: table, Row: row} }
		}

	// Copy
	case "y":
		m.doCopyCell()
	case "Y":
		m.doCopyRowJSON()
	case "c":
		m.doCopyRowCSV()
	case "t":
		m.doCopyRowText()

	// Generate SQL into the editor
	case "f":
		return m, m.doFilterByValue()
	case "D":
		return m, m.doGenerateDelete()

	// Export
	case "ctrl+s":
		return m, m.exportCSVCmd()
	case "ctrl+j":
		return m, m.exportJSONCmd()
	}

	m.scrollToCursor()
	return m, nil
}

func (m Model) pageCmd(step func(Browse) (Browse, bool)) tea.Cmd {
	if m.browse == nil {
		return nil
	}
	next, ok := step(*m.browse)
	if !ok {
		return nil
	}
	return fetch(next)
}

func fetch(b Browse) tea.Cmd {
	req := b.Request()
	return func() tea.Msg { return FetchPageMsg{Request: req} }
}

func (m Model) visibleRows() int {
	return max(1, m.height-4)
}

func (m *Model) scrollToCursor() {
	visible := m.visibleRows()
	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if m.cursorY >= m.scrollY+visible {
		m.scrollY = m.cursorY - visible + 1
	}
}

// View renders the results pane.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Results")
	if m.browse != nil {
		title = theme.StyleTitle.Render(m.browse.Table)
	}

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}
	if m.err != nil {
		return title + "\n" + theme.StyleError.Render("  Error: "+m.err.Error())
	}
	if m.result == nil {
		return title + "\n" + theme.StyleMuted.Render("  Execute a query or open a table to see results")
	}

	header := title + "  " + theme.StyleMuted.Render(m.stats())

	if m.result.Kind == database.Write {
		msg := fmt.Sprintf("  %s row(s) changed", humanize.Comma(m.result.Changes))
		if m.result.LastInsertID != nil {
			msg += fmt.Sprintf(", last insert id %d", *m.result.LastInsertID)
		}
		return header + "\n" + theme.StyleSuccess.Render(msg)
	}
	if len(m.result.Columns) == 0 {
		return header + "\n" + theme.StyleMuted.Render("  No rows")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())
	b.WriteString("\n")

	visible := m.visibleRows()
	for i := m.scrollY; i < len(m.cells) && i < m.scrollY+visible; i++ {
		b.WriteString(m.renderRow(m.cells[i], i))
		if i < m.scrollY+visible-1 && i < len(m.cells)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) stats() string {
	elapsed := m.result.Duration.Round(1000).String()
	if m.browse == nil {
		return fmt.Sprintf("%d row(s) | %s", m.result.RowCount(), elapsed)
	}
	total := int64(0)
	if m.result.Total != nil {
		total = *m.result.Total
	}
	return fmt.Sprintf("page %d/%d | %s row(s) | %s",
		m.browse.Page, m.browse.TotalPages, humanize.Comma(total), elapsed)
}

func (m Model) renderHeader() string {
	cells := make([]string, len(m.result.Columns))
	for i, col := range m.result.Columns {
		if m.browse != nil && m.browse.SortColumn == col {
			if m.browse.SortDirection == database.SortDesc {
				col += " ▼"
			} else {
				col += " ▲"
			}
		}
		cells[i] = col
	}
	return m.renderCells(cells, -1, true)
}

func (m Model) renderRow(cells []string, row int) string {
	return m.renderCells(cells, row, false)
}

func (m Model) renderCells(cells []string, row int, isHeader bool) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		width := 10
		if i < len(m.colWidths) {
			width = m.colWidths[i]
		}
		display := fit(cell, width)

		switch {
		case isHeader:
			parts[i] = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(display)
		case m.focused && row == m.cursorY && i == m.cursorX:
			parts[i] = lipgloss.NewStyle().Reverse(true).Render(display)
		case cell == "NULL" && m.result.Rows[row][m.result.Columns[i]] == nil:
			parts[i] = theme.StyleMuted.Render(display)
		default:
			parts[i] = display
		}
	}
	return "  " + strings.Join(parts, " │ ")
}

// fit truncates or pads s to exactly width display cells.
func fit(s string, width int) string {
	if width < 1 {
		width = 1
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes)) >= width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func (m Model) renderSeparator() string {
	parts := make([]string, len(m.colWidths))
	for i, w := range m.colWidths {
		parts[i] = strings.Repeat("─", max(1, w))
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}
