package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const patientsTable = "patients"

func (q *queries) CreatePatient(ctx context.Context, p *Patient) error {
	ins := q.b.Insert(patientsTable).
		Columns("username", "passhash", "name", "is_admin").
		Values(p.Username, p.passhash, nullable(p.Name), p.IsAdmin)

	id, err := q.insert(ctx, ins)
	if err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	p.ID = id
	return nil
}

func (q *queries) PatientByID(ctx context.Context, id int) (*Patient, error) {
	return q.patientWhere(ctx, "id", id)
}

func (q *queries) PatientByUsername(ctx context.Context, username string) (*Patient, error) {
	return q.patientWhere(ctx, "username", username)
}

func (q *queries) CountPatients(ctx context.Context) (int, error) {
	return q.count(ctx, patientsTable)
}

// UpdatePatientCredential stores p's current hash, e.g. after a rehash.
func (q *queries) UpdatePatientCredential(ctx context.Context, p *Patient) error {
	return q.updateCredential(ctx, patientsTable, p.ID, p.passhash)
}

func (q *queries) updateCredential(ctx context.Context, table string, id int, hash string) error {
	upd := q.b.Update(table).
		Set("passhash", hash).
		Where(entsql.EQ("id", id))

	n, err := q.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update %s credential: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s credential: %w", table, ErrNotFound)
	}
	return nil
}

func (q *queries) patientWhere(ctx context.Context, column string, value any) (*Patient, error) {
	t := q.b.Table(patientsTable)
	sel := q.b.Select(t.C("id"), t.C("username"), t.C("passhash"), t.C("name"), t.C("is_admin")).
		From(t).
		Where(entsql.EQ(t.C(column), value)).
		Limit(1)

	var p *Patient
	err := q.query(ctx, sel, func(rows *entsql.Rows) error {
		if !rows.Next() {
			return ErrNotFound
		}
		var (
			v    Patient
			name entsql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Username, &v.passhash, &name, &v.IsAdmin); err != nil {
			return err
		}
		v.Name = name.String
		p = &v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("patient by %s: %w", column, err)
	}
	return p, nil
}

// nullable stores empty optional text as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
