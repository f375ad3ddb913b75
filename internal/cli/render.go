package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/joacominatel/studiodb/internal/database"
)

// Output formats accepted by --format.
const (
	formatTable    = "table"
	formatCSV      = "csv"
	formatMarkdown = "md"
	formatJSON     = "json"
)

func validFormat(f string) error {
	switch f {
	case formatTable, formatCSV, formatMarkdown, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (table, csv, md, json)", f)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderResult(w io.Writer, res *database.QueryResult, format string) error {
	if res.Kind == database.Write {
		_, _ = fmt.Fprintf(w, "%s row(s) changed", humanize.Comma(res.Changes))
		if res.LastInsertID != nil {
			_, _ = fmt.Fprintf(w, ", last insert id %d", *res.LastInsertID)
		}
		_, _ = fmt.Fprintln(w)
		return nil
	}

	switch format {
	case formatJSON:
		return renderJSON(w, res)
	case formatCSV:
		return database.WriteCSV(w, res)
	}
	if len(res.Columns) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(w)
	header := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, cells := range res.Strings() {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}

	switch format {
	case formatMarkdown:
		t.RenderMarkdown()
	default:
		t.Render()
		_, _ = fmt.Fprintf(w, "(%s rows, %s)\n", humanize.Comma(int64(res.RowCount())), res.Duration.Round(time.Microsecond))
	}
	return nil
}

// renderJSON writes rows as objects. Blobs that are not text are hex strings.
func renderJSON(w io.Writer, res *database.QueryResult) error {
	rows := make([]map[string]any, len(res.Rows))
	for i, row := range res.Rows {
		out := make(map[string]any, len(row))
		for col, v := range row {
			switch v.(type) {
			case nil, int64, float64:
				out[col] = v
			default:
				out[col] = database.FormatValue(v)
			}
		}
		rows[i] = out
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func renderSchema(w io.Writer, schema database.TableSchema) {
	t := newTable(w)
	t.SetTitle(schema.Table)
	t.AppendHeader(table.Row{"#", "Column", "Type", "Not null", "PK", "Default"})
	for _, c := range schema.Columns {
		def := ""
		if c.Default != nil {
			def = *c.Default
		}
		t.AppendRow(table.Row{c.Position, c.Name, c.Type, yes(c.NotNull), yes(c.PrimaryKey), def})
	}
	t.Render()
}

func renderInfo(w io.Writer, info *database.DatabaseInfo) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"Path", info.Path},
		{"Size", humanize.Bytes(uint64(max(info.Size, 0)))},
		{"Modified", humanize.Time(info.ModTime)},
		{"SQLite", info.EngineVersion},
		{"Tables", info.TableCount},
		{"Read-only", yes(info.ReadOnly)},
	})
	t.Render()
}

func yes(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
