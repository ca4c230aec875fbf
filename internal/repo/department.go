package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const departmentsTable = "departments"

func (q *queries) CreateDepartment(ctx context.Context, d *Department) error {
	ins := q.b.Insert(departmentsTable).
		Columns("name", "description", "doctors_registered").
		Values(nullable(d.Name), nullable(d.Description), nullable(d.DoctorsRegistered))

	id, err := q.insert(ctx, ins)
	if err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	d.ID = id
	return nil
}

func (q *queries) DepartmentByID(ctx context.Context, id int) (*Department, error) {
	t := q.b.Table(departmentsTable)
	sel := q.departmentSelect(t).Where(entsql.EQ(t.C("id"), id)).Limit(1)

	var d *Department
	err := q.query(ctx, sel, func(rows *entsql.Rows) error {
		if !rows.Next() {
			return ErrNotFound
		}
		var err error
		d, err = scanDepartment(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("department by id: %w", err)
	}
	return d, nil
}

func (q *queries) ListDepartments(ctx context.Context) ([]*Department, error) {
	t := q.b.Table(departmentsTable)
	sel := q.departmentSelect(t).OrderBy(t.C("id"))

	var out []*Department
	err := q.query(ctx, sel, func(rows *entsql.Rows) error {
		for rows.Next() {
			d, err := scanDepartment(rows)
			if err != nil {
				return err
			}
			out = append(out, d)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return out, nil
}

func (q *queries) departmentSelect(t *entsql.SelectTable) *entsql.Selector {
	return q.b.Select(t.C("id"), t.C("name"), t.C("description"), t.C("doctors_registered")).From(t)
}

func scanDepartment(rows *entsql.Rows) (*Department, error) {
	var (
		d                        Department
		name, desc, registeredAs entsql.NullString
	)
	if err := rows.Scan(&d.ID, &name, &desc, &registeredAs); err != nil {
		return nil, err
	}
	d.Name = name.String
	d.Description = desc.String
	d.DoctorsRegistered = registeredAs.String
	return &d, nil
}
