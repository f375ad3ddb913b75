package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// QueryRecorder receives every successfully executed ad-hoc statement.
type QueryRecorder interface {
	RecordQuery(query string)
}

// Executor builds and runs paginated reads and ad-hoc statements.
type Executor struct {
	conns   *Manager
	history QueryRecorder
	log     logrus.FieldLogger
}

// NewExecutor creates an Executor. history may be nil.
func NewExecutor(conns *Manager, history QueryRecorder, log logrus.FieldLogger) *Executor {
	return &Executor{
		conns:   conns,
		history: history,
		log:     log.WithField("component", "query"),
	}
}

// FetchPage reads one page of a table. The table name and sort column are
// checked against the table's schema before any data query is issued; limit
// and offset are bound. Count and rows are read in one transaction so the
// total matches the window.
func (e *Executor) FetchPage(ctx context.Context, req PageRequest) (*QueryResult, error) {
	conn, err := e.conns.Current()
	if err != nil {
		return nil, err
	}
	req = req.normalize()

	schema, err := describe(ctx, conn.db, conn, req.Table)
	if err != nil {
		return nil, err
	}

	orderBy, err := orderClause(schema, req)
	if err != nil {
		return nil, err
	}

	table := quoteIdent(schema.Table)
	countSQL := "SELECT COUNT(*) FROM " + table
	pageSQL := "SELECT * FROM " + table + orderBy + " LIMIT ? OFFSET ?"

	start := time.Now()

	tx, err := conn.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, conn.liveErr(countSQL, err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	if err := tx.QueryRowContext(ctx, countSQL).Scan(&total); err != nil {
		return nil, conn.liveErr(countSQL, err)
	}

	rows, err := tx.QueryContext(ctx, pageSQL, req.PageSize, req.Offset())
	if err != nil {
		return nil, conn.liveErr(pageSQL, err)
	}
	defer rows.Close()

	columns, data, err := scanRows(rows)
	if err != nil {
		return nil, conn.liveErr(pageSQL, err)
	}

	e.log.WithFields(logrus.Fields{
		"table": schema.Table,
		"page":  req.Page,
		"rows":  len(data),
		"total": total,
	}).Debug("page fetched")

	return &QueryResult{
		Kind:     Read,
		Columns:  columns,
		Rows:     data,
		Total:    &total,
		Duration: time.Since(start),
	}, nil
}

func orderClause(schema TableSchema, req PageRequest) (string, error) {
	if req.SortColumn == "" {
		return "", nil
	}
	if _, ok := schema.Column(req.SortColumn); !ok {
		return "", invalidIdentifier("sort column", req.SortColumn, schema.Table)
	}

	dir := req.SortDirection.keyword()
	clause := " ORDER BY " + quoteIdent(req.SortColumn) + " " + dir

	// The key breaks ties so desc is the exact reverse of asc.
	if pk, ok := schema.PrimaryKey(); ok && pk.Name != req.SortColumn {
		clause += ", " + quoteIdent(pk.Name) + " " + dir
	}
	return clause, nil
}

// Execute runs an ad-hoc statement. Reads return all rows with columns taken
// from the first row; writes return a single "Changes" column. Engine errors
// are returned as *SQLError and never retried.
func (e *Executor) Execute(ctx context.Context, raw string) (*QueryResult, error) {
	conn, err := e.conns.Current()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &SQLError{Query: raw, Cause: errors.New("empty statement")}
	}

	kind := Classify(raw)
	start := time.Now()

	var result *QueryResult
	switch kind {
	case Read:
		result, err = e.read(ctx, conn, raw)
	default:
		result, err = e.write(ctx, conn, raw)
	}
	if err != nil {
		e.log.WithError(err).WithField("kind", kind).Debug("statement failed")
		return nil, err
	}
	result.Duration = time.Since(start)

	if e.history != nil {
		e.history.RecordQuery(raw)
	}
	return result, nil
}

func (e *Executor) read(ctx context.Context, conn *Conn, raw string) (*QueryResult, error) {
	rows, err := conn.db.QueryContext(ctx, raw)
	if err != nil {
		return nil, conn.liveErr(raw, err)
	}
	defer rows.Close()

	columns, data, err := scanRows(rows)
	if err != nil {
		return nil, conn.liveErr(raw, err)
	}
	if len(data) == 0 {
		columns = []string{}
	}
	return &QueryResult{Kind: Read, Columns: columns, Rows: data}, nil
}

func (e *Executor) write(ctx context.Context, conn *Conn, raw string) (*QueryResult, error) {
	res, err := conn.db.ExecContext(ctx, raw)
	if err != nil {
		return nil, conn.liveErr(raw, err)
	}
	changes, err := res.RowsAffected()
	if err != nil {
		return nil, conn.liveErr(raw, err)
	}

	result := &QueryResult{
		Kind:    Write,
		Columns: []string{"Changes"},
		Rows:    []Row{{"Changes": changes}},
		Changes: changes,
	}

	switch strings.ToLower(leadingKeyword(raw)) {
	case "insert", "replace":
		if id, err := res.LastInsertId(); err == nil {
			result.LastInsertID = &id
		}
	}
	return result, nil
}

// scanRows reads every row into column-keyed maps.
func scanRows(rows *sql.Rows) ([]string, []Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	data := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, data, nil
}
