package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joacominatel/studiodb/internal/database"
)

func (m Model) currentRow() (database.Row, bool) {
	if m.result == nil || m.cursorY < 0 || m.cursorY >= len(m.result.Rows) {
		return nil, false
	}
	return m.result.Rows[m.cursorY], true
}

func (m Model) getColumnName() string {
	if m.result == nil || m.cursorX < 0 || m.cursorX >= len(m.result.Columns) {
		return ""
	}
	return m.result.Columns[m.cursorX]
}

func (m Model) getCellValue() (any, bool) {
	row, ok := m.currentRow()
	col := m.getColumnName()
	if !ok || col == "" {
		return nil, false
	}
	return row[col], true
}

// tableName is the table the shown rows came from, best effort for ad-hoc
// statements.
func (m Model) tableName() string {
	if m.browse != nil {
		return m.browse.Table
	}
	return extractTableName(m.lastQuery)
}

// --- Copy ---

func (m *Model) copyText(text, done string) {
	if err := clipboard.WriteAll(text); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = done
}

func (m *Model) doCopyCell() {
	v, ok := m.getCellValue()
	if !ok {
		m.statusMessage = "Nothing to copy"
		return
	}
	val := database.FormatValue(v)
	m.copyText(val, "Copied: "+truncateStatus(val, 40))
}

func (m *Model) doCopyRowJSON() {
	row, ok := m.currentRow()
	if !ok {
		m.statusMessage = "No row to copy"
		return
	}
	m.copyText(rowToJSON(m.result.Columns, row), "Copied row as JSON")
}

func (m *Model) doCopyRowCSV() {
	if _, ok := m.currentRow(); !ok {
		m.statusMessage = "No row to copy"
		return
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(m.result.Columns)
	_ = w.Write(m.cells[m.cursorY])
	w.Flush()
	m.copyText(b.String(), "Copied row as CSV")
}

func (m *Model) doCopyRowText() {
	if _, ok := m.currentRow(); !ok {
		m.statusMessage = "No row to copy"
		return
	}
	m.copyText(strings.Join(m.cells[m.cursorY], "\t"), "Copied row as text")
}

// --- Filter ---

func (m *Model) doFilterByValue() tea.Cmd {
	col := m.getColumnName()
	val, ok := m.getCellValue()
	table := m.tableName()
	if !ok || table == "" {
		m.statusMessage = "Cannot filter: no cell selected"
		return nil
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", quoteIdent(table), condition(col, val))
	return func() tea.Msg {
		return SetEditorQueryMsg{Query: query}
	}
}

// --- Delete ---

func (m *Model) doGenerateDelete() tea.Cmd {
	row, ok := m.currentRow()
	table := m.tableName()
	if !ok || table == "" {
		return nil
	}

	conditions := make([]string, 0, len(m.result.Columns))
	for _, col := range m.result.Columns {
		conditions = append(conditions, condition(col, row[col]))
	}

	// send to editor for review, never auto-execute deletes
	query := fmt.Sprintf("-- review before executing!\nDELETE FROM %s WHERE %s",
		quoteIdent(table), strings.Join(conditions, " AND "))

	return func() tea.Msg {
		return SetEditorQueryMsg{Query: query}
	}
}

// --- Export ---

func (m Model) exportJSONCmd() tea.Cmd {
	result := m.result
	if result == nil {
		return nil
	}
	return func() tea.Msg {
		filename := exportName("json")

		var b strings.Builder
		b.WriteString("[\n")
		for ri, row := range result.Rows {
			if ri > 0 {
				b.WriteString(",\n")
			}
			b.WriteString("  ")
			b.WriteString(rowToJSON(result.Columns, row))
		}
		b.WriteString("\n]\n")

		if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(result.Rows), filename)}
	}
}

func (m Model) exportCSVCmd() tea.Cmd {
	result := m.result
	if result == nil {
		return nil
	}
	return func() tea.Msg {
		filename := exportName("csv")

		f, err := os.Create(filename)
		if err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		defer f.Close()

		if err := database.WriteCSV(f, result); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(result.Rows), filename)}
	}
}

func exportName(ext string) string {
	return fmt.Sprintf("studiodb_export_%s.%s", time.Now().Format("20060102_150405"), ext)
}

// --- Helpers ---

func extractTableName(query string) string {
	tokens := strings.Fields(query)
	for i, tok := range tokens {
		switch strings.ToUpper(tok) {
		case "FROM", "INTO", "UPDATE":
			if i+1 < len(tokens) {
				name := strings.Trim(strings.TrimRight(tokens[i+1], ";,()"), "\"`[]")
				if name != "" {
					return name
				}
			}
		}
	}
	return ""
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// condition renders col = value as SQL, matching NULL with IS NULL.
func condition(col string, v any) string {
	if v == nil {
		return quoteIdent(col) + " IS NULL"
	}
	return quoteIdent(col) + " = " + sqlLiteral(v)
}

func sqlLiteral(v any) string {
	switch val := v.(type) {
	case int64, float64, int, bool:
		return fmt.Sprint(val)
	case []byte:
		if !utf8.Valid(val) {
			return database.FormatValue(val)
		}
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(database.FormatValue(val), "'", "''") + "'"
	}
}

// rowToJSON preserves column order unlike map marshaling
func rowToJSON(columns []string, row database.Row) string {
	var b strings.Builder
	b.WriteString("{")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(col)
		b.Write(key)
		b.WriteString(": ")

		var val []byte
		switch v := row[col].(type) {
		case nil:
			val = []byte("null")
		case int64, float64:
			val, _ = json.Marshal(v)
		default:
			val, _ = json.Marshal(database.FormatValue(v))
		}
		b.Write(val)
	}
	b.WriteString("}")
	return b.String()
}

func truncateStatus(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
