package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const doctorsTable = "doctors"

func (q *queries) CreateDoctor(ctx context.Context, d *Doctor) error {
	var dept any
	if d.DepartmentID != nil {
		dept = *d.DepartmentID
	}
	ins := q.b.Insert(doctorsTable).
		Columns("username", "passhash", "name", "department_id").
		Values(d.Username, d.passhash, nullable(d.Name), dept)

	id, err := q.insert(ctx, ins)
	if err != nil {
		return fmt.Errorf("create doctor: %w", err)
	}
	d.ID = id
	return nil
}

func (q *queries) DoctorByID(ctx context.Context, id int) (*Doctor, error) {
	return q.doctorWhere(ctx, "id", id)
}

func (q *queries) UpdateDoctorCredential(ctx context.Context, d *Doctor) error {
	return q.updateCredential(ctx, doctorsTable, d.ID, d.passhash)
}

func (q *queries) DoctorByUsername(ctx context.Context, username string) (*Doctor, error) {
	return q.doctorWhere(ctx, "username", username)
}

func (q *queries) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	t := q.b.Table(doctorsTable)
	sel := q.doctorSelect(t).OrderBy(t.C("id"))

	var out []*Doctor
	err := q.query(ctx, sel, func(rows *entsql.Rows) error {
		for rows.Next() {
			d, err := scanDoctor(rows)
			if err != nil {
				return err
			}
			out = append(out, d)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return out, nil
}

func (q *queries) CountDoctors(ctx context.Context) (int, error) {
	return q.count(ctx, doctorsTable)
}

func (q *queries) doctorWhere(ctx context.Context, column string, value any) (*Doctor, error) {
	t := q.b.Table(doctorsTable)
	sel := q.doctorSelect(t).Where(entsql.EQ(t.C(column), value)).Limit(1)

	var d *Doctor
	err := q.query(ctx, sel, func(rows *entsql.Rows) error {
		if !rows.Next() {
			return ErrNotFound
		}
		var err error
		d, err = scanDoctor(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("doctor by %s: %w", column, err)
	}
	return d, nil
}

func (q *queries) doctorSelect(t *entsql.SelectTable) *entsql.Selector {
	return q.b.Select(t.C("id"), t.C("username"), t.C("passhash"), t.C("name"), t.C("department_id")).From(t)
}

func scanDoctor(rows *entsql.Rows) (*Doctor, error) {
	var (
		d    Doctor
		name entsql.NullString
		dept entsql.NullInt64
	)
	if err := rows.Scan(&d.ID, &d.Username, &d.passhash, &name, &dept); err != nil {
		return nil, err
	}
	d.Name = name.String
	if dept.Valid {
		id := int(dept.Int64)
		d.DepartmentID = &id
	}
	return &d, nil
}
