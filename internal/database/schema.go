package database

import (
	"context"
	"database/sql"
)

// Inspector reads table and column metadata from the current connection.
// Nothing is cached: every call queries the engine.
type Inspector struct {
	conns *Manager
}

// NewInspector creates an Inspector bound to the manager's current connection.
func NewInspector(conns *Manager) *Inspector {
	return &Inspector{conns: conns}
}

// ListTables returns user table names in lexical order.
func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	conn, err := i.conns.Current()
	if err != nil {
		return nil, err
	}

	rows, err := conn.db.QueryContext(ctx, queryListTables)
	if err != nil {
		return nil, conn.liveErr(queryListTables, err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, conn.liveErr(queryListTables, err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, conn.liveErr(queryListTables, err)
	}
	return tables, nil
}

// DescribeTable returns the columns of table in declaration order.
func (i *Inspector) DescribeTable(ctx context.Context, table string) (TableSchema, error) {
	conn, err := i.conns.Current()
	if err != nil {
		return TableSchema{}, err
	}
	return describe(ctx, conn.db, conn, table)
}

// CountTables returns the number of user tables.
func (i *Inspector) CountTables(ctx context.Context) (int, error) {
	conn, err := i.conns.Current()
	if err != nil {
		return 0, err
	}
	var n int
	if err := conn.db.QueryRowContext(ctx, queryCountTables).Scan(&n); err != nil {
		return 0, conn.liveErr(queryCountTables, err)
	}
	return n, nil
}

// EngineVersion returns the SQLite library version.
func (i *Inspector) EngineVersion(ctx context.Context) (string, error) {
	conn, err := i.conns.Current()
	if err != nil {
		return "", err
	}
	var v string
	if err := conn.db.QueryRowContext(ctx, queryEngineVersion).Scan(&v); err != nil {
		return "", conn.liveErr(queryEngineVersion, err)
	}
	return v, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func describe(ctx context.Context, q queryer, conn *Conn, table string) (TableSchema, error) {
	if table == "" {
		return TableSchema{}, schemaNotFound(table)
	}

	rows, err := q.QueryContext(ctx, queryDescribeTable, table)
	if err != nil {
		return TableSchema{}, conn.liveErr(queryDescribeTable, err)
	}
	defer rows.Close()

	schema := TableSchema{Table: table}
	for rows.Next() {
		var (
			col     Column
			notNull int
			pk      int
			dflt    sql.NullString
		)
		if err := rows.Scan(&col.Position, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return TableSchema{}, conn.liveErr(queryDescribeTable, err)
		}
		col.NotNull = notNull != 0
		col.PrimaryKey = pk > 0
		if dflt.Valid {
			v := dflt.String
			col.Default = &v
		}
		schema.Columns = append(schema.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return TableSchema{}, conn.liveErr(queryDescribeTable, err)
	}

	if len(schema.Columns) == 0 {
		return TableSchema{}, schemaNotFound(table)
	}
	return schema, nil
}
