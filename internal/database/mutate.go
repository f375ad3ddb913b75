package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mutator builds and runs parameterized UPDATE and INSERT statements.
type Mutator struct {
	conns *Manager
	log   logrus.FieldLogger
}

// NewMutator creates a Mutator bound to the manager's current connection.
func NewMutator(conns *Manager, log logrus.FieldLogger) *Mutator {
	return &Mutator{
		conns: conns,
		log:   log.WithField("component", "mutate"),
	}
}

// Update writes every field of rec except the key column into the row whose
// key equals rec[key]. The key is explicitKey when given, else the table's
// primary key. Zero affected rows is not an error.
func (m *Mutator) Update(ctx context.Context, table string, rec Record, explicitKey string) (MutationResult, error) {
	conn, err := m.conns.Current()
	if err != nil {
		return MutationResult{}, err
	}

	schema, err := describe(ctx, conn.db, conn, table)
	if err != nil {
		return MutationResult{}, err
	}
	if len(rec) == 0 {
		return MutationResult{}, invalidRecord("record is empty")
	}

	key := explicitKey
	if key == "" {
		pk, ok := schema.PrimaryKey()
		if !ok {
			return MutationResult{}, fmt.Errorf("%w: table %q has no primary key and none was given", ErrNoPrimaryKey, schema.Table)
		}
		key = pk.Name
	} else if _, ok := schema.Column(key); !ok {
		return MutationResult{}, invalidIdentifier("key column", key, schema.Table)
	}

	if err := checkFields(schema, rec); err != nil {
		return MutationResult{}, err
	}
	keyValue, ok := rec[key]
	if !ok {
		return MutationResult{}, invalidRecord("record has no value for key column %q", key)
	}

	var (
		sets []string
		args []any
	)
	for _, col := range schema.Columns {
		if col.Name == key {
			continue
		}
		if v, ok := rec[col.Name]; ok {
			sets = append(sets, quoteIdent(col.Name)+" = ?")
			args = append(args, v)
		}
	}
	if len(sets) == 0 {
		return MutationResult{}, invalidRecord("record has no fields to update besides %q", key)
	}
	args = append(args, keyValue)

	query := "UPDATE " + quoteIdent(schema.Table) +
		" SET " + strings.Join(sets, ", ") +
		" WHERE " + quoteIdent(key) + " = ?"

	res, err := conn.db.ExecContext(ctx, query, args...)
	if err != nil {
		return MutationResult{}, conn.liveErr(query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return MutationResult{}, conn.liveErr(query, err)
	}

	m.log.WithFields(logrus.Fields{
		"table":    schema.Table,
		"key":      key,
		"affected": n,
	}).Debug("record updated")

	return MutationResult{RowsAffected: n}, nil
}

// Insert adds a row holding the supplied fields.
func (m *Mutator) Insert(ctx context.Context, table string, rec Record) (MutationResult, error) {
	conn, err := m.conns.Current()
	if err != nil {
		return MutationResult{}, err
	}

	schema, err := describe(ctx, conn.db, conn, table)
	if err != nil {
		return MutationResult{}, err
	}
	if len(rec) == 0 {
		return MutationResult{}, invalidRecord("record is empty")
	}
	if err := checkFields(schema, rec); err != nil {
		return MutationResult{}, err
	}

	var (
		cols         []string
		placeholders []string
		args         []any
	)
	for _, col := range schema.Columns {
		if v, ok := rec[col.Name]; ok {
			cols = append(cols, quoteIdent(col.Name))
			placeholders = append(placeholders, "?")
			args = append(args, v)
		}
	}

	query := "INSERT INTO " + quoteIdent(schema.Table) +
		" (" + strings.Join(cols, ", ") + ")" +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	res, err := conn.db.ExecContext(ctx, query, args...)
	if err != nil {
		return MutationResult{}, conn.liveErr(query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return MutationResult{}, conn.liveErr(query, err)
	}

	out := MutationResult{RowsAffected: n}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = &id
	}

	m.log.WithFields(logrus.Fields{
		"table":    schema.Table,
		"affected": n,
	}).Debug("record inserted")

	return out, nil
}

// checkFields rejects record fields that are not columns of the table.
func checkFields(schema TableSchema, rec Record) error {
	for name := range rec {
		if _, ok := schema.Column(name); !ok {
			return invalidIdentifier("column", name, schema.Table)
		}
	}
	return nil
}
