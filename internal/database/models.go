package database

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultPageSize is the number of rows returned per page when a request
// does not specify one.
const DefaultPageSize = 50

// MaxPageSize bounds a single page read.
const MaxPageSize = 1000

// Column represents a table column with its metadata.
type Column struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	NotNull    bool    `json:"notnull"`
	PrimaryKey bool    `json:"pk"`
	Default    *string `json:"default,omitempty"`
	Position   int     `json:"position"`
}

// TableSchema is the ordered column list of one table, in declaration order.
type TableSchema struct {
	Table   string
	Columns []Column
}

// PrimaryKey returns the first column flagged as part of the primary key.
// Composite keys are not treated specially.
func (s TableSchema) PrimaryKey() (Column, bool) {
	for _, c := range s.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// Column looks up a column by exact name.
func (s TableSchema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in declaration order.
func (s TableSchema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// SortDirection orders a paginated read.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts "asc" or "desc" in any case. An empty string is asc.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", s)
	}
}

func (d SortDirection) keyword() string {
	if d == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// PageRequest describes one window of a table's rows. Pages are 1-indexed.
type PageRequest struct {
	Table         string
	Page          int
	PageSize      int
	SortColumn    string
	SortDirection SortDirection
}

// normalize applies defaults and bounds.
func (r PageRequest) normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize <= 0 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	// Pages past this one would overflow the offset; they are empty anyway.
	if maxPage := math.MaxInt / r.PageSize; r.Page > maxPage {
		r.Page = maxPage
	}
	if r.SortDirection != SortDesc {
		r.SortDirection = SortAsc
	}
	return r
}

// Offset returns the number of rows skipped before this page.
func (r PageRequest) Offset() int {
	r = r.normalize()
	return (r.Page - 1) * r.PageSize
}

// Row maps column names to the values returned by the engine.
type Row map[string]any

// QueryResult holds the result of a SQL query execution.
type QueryResult struct {
	Kind         StatementKind
	Columns      []string
	Rows         []Row
	Total        *int64
	Changes      int64
	LastInsertID *int64
	Duration     time.Duration
}

// RowCount returns the number of rows held by the result.
func (r *QueryResult) RowCount() int {
	return len(r.Rows)
}

// TotalPages returns the number of pages of size pageSize covered by Total.
func (r *QueryResult) TotalPages(pageSize int) int {
	if r.Total == nil || *r.Total == 0 {
		return 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return int((*r.Total + int64(pageSize) - 1) / int64(pageSize))
}

// Strings renders every row as display strings in column order.
func (r *QueryResult) Strings() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		cells := make([]string, len(r.Columns))
		for j, col := range r.Columns {
			cells[j] = FormatValue(row[col])
		}
		out[i] = cells
	}
	return out
}

// FormatValue converts an engine value into its display form.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		if utf8.Valid(val) {
			return string(val)
		}
		return fmt.Sprintf("x'%X'", val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Record is a set of column values to write into a table row.
type Record map[string]any

// MutationResult reports the outcome of an UPDATE or INSERT.
type MutationResult struct {
	RowsAffected int64
	LastInsertID *int64
}

// DatabaseInfo describes the open database file.
type DatabaseInfo struct {
	Path          string
	Size          int64
	ModTime       time.Time
	EngineVersion string
	TableCount    int
	ReadOnly      bool
}
