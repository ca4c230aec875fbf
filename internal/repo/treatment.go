package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const treatmentsTable = "treatments"

func (q *queries) TreatmentByAppointment(ctx context.Context, appointmentID int) (*Treatment, error) {
	t := q.b.Table(treatmentsTable)
	sel := q.b.Select(t.C("id"), t.C("appointment_id"), t.C("diagnosis"), t.C("prescription"), t.C("notes")).
		From(t).
		Where(entsql.EQ(t.C("appointment_id"), appointmentID)).
		Limit(1)

	var tr *Treatment
	err := q.query(ctx, sel, func(rows *entsql.Rows) error {
		if !rows.Next() {
			return ErrNotFound
		}
		var (
			v                            Treatment
			diagnosis, prescription, nts entsql.NullString
		)
		if err := rows.Scan(&v.ID, &v.AppointmentID, &diagnosis, &prescription, &nts); err != nil {
			return err
		}
		v.Diagnosis = diagnosis.String
		v.Prescription = prescription.String
		v.Notes = nts.String
		tr = &v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("treatment by appointment: %w", err)
	}
	return tr, nil
}

func (q *queries) CreateTreatment(ctx context.Context, t *Treatment) error {
	ins := q.b.Insert(treatmentsTable).
		Columns("appointment_id", "diagnosis", "prescription", "notes").
		Values(t.AppointmentID, t.Diagnosis, t.Prescription, nullable(t.Notes))

	id, err := q.insert(ctx, ins)
	if err != nil {
		return fmt.Errorf("create treatment: %w", err)
	}
	t.ID = id
	return nil
}

func (q *queries) UpdateTreatment(ctx context.Context, t *Treatment) error {
	upd := q.b.Update(treatmentsTable).
		Set("diagnosis", t.Diagnosis).
		Set("prescription", t.Prescription).
		Set("notes", nullable(t.Notes)).
		Where(entsql.EQ("id", t.ID))

	n, err := q.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update treatment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update treatment: %w", ErrNotFound)
	}
	return nil
}
