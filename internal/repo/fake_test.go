package repo

import (
	"context"
	"database/sql"
	"errors"
	"reflect"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// fakeDriver records statements and answers queries with canned rows.
type fakeDriver struct {
	queries  []string
	args     [][]any
	rows     [][]any
	affected int64
	err      error

	begun, committed, rolledBack int
}

func (d *fakeDriver) Exec(_ context.Context, query string, args, v any) error {
	d.record(query, args)
	if d.err != nil {
		return d.err
	}
	if res, ok := v.(*entsql.Result); ok {
		*res = fakeResult(d.affected)
	}
	return nil
}

func (d *fakeDriver) Query(_ context.Context, query string, args, v any) error {
	d.record(query, args)
	if d.err != nil {
		return d.err
	}
	rows, ok := v.(*entsql.Rows)
	if !ok {
		return errors.New("unexpected query target")
	}
	*rows = entsql.Rows{ColumnScanner: &fakeRows{data: d.rows, pos: -1}}
	return nil
}

func (d *fakeDriver) Tx(context.Context) (dialect.Tx, error) {
	d.begun++
	return &fakeTx{fakeDriver: d}, nil
}

func (d *fakeDriver) Close() error    { return nil }
func (d *fakeDriver) Dialect() string { return dialect.Postgres }

func (d *fakeDriver) record(query string, args any) {
	d.queries = append(d.queries, query)
	a, _ := args.([]any)
	d.args = append(d.args, a)
}

func (d *fakeDriver) lastQuery() string {
	if len(d.queries) == 0 {
		return ""
	}
	return d.queries[len(d.queries)-1]
}

type fakeTx struct{ *fakeDriver }

func (t *fakeTx) Commit() error   { t.committed++; return nil }
func (t *fakeTx) Rollback() error { t.rolledBack++; return nil }

type fakeResult int64

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return int64(r), nil }

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close() error                            { return nil }
func (r *fakeRows) ColumnTypes() ([]*sql.ColumnType, error) { return nil, nil }
func (r *fakeRows) Columns() ([]string, error)              { return nil, nil }
func (r *fakeRows) Err() error                              { return nil }
func (r *fakeRows) NextResultSet() bool                     { return false }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos]
	if len(row) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, v := range row {
		if s, ok := dest[i].(sql.Scanner); ok {
			if err := s.Scan(v); err != nil {
				return err
			}
			continue
		}
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}
