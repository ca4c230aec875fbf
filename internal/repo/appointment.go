package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const appointmentsTable = "appointments"

func (q *queries) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	ins := q.b.Insert(appointmentsTable).
		Columns("patient_id", "doctor_id", "scheduled_at", "status").
		Values(a.PatientID, a.DoctorID, a.ScheduledAt, string(a.Status))

	id, err := q.insert(ctx, ins)
	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	a.ID = id
	return nil
}

func (q *queries) AppointmentByID(ctx context.Context, id int) (*Appointment, error) {
	sel, a := q.appointmentSelect()
	sel.Where(entsql.EQ(a.C("id"), id)).Limit(1)

	var appt *Appointment
	err := q.query(ctx, sel, func(rows *entsql.Rows) error {
		if !rows.Next() {
			return ErrNotFound
		}
		var err error
		appt, err = scanAppointment(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("appointment by id: %w", err)
	}
	return appt, nil
}

func (q *queries) ListAppointmentsByPatient(ctx context.Context, patientID int) ([]*Appointment, error) {
	return q.listAppointments(ctx, "patient_id", patientID)
}

func (q *queries) ListAppointmentsByDoctor(ctx context.Context, doctorID int) ([]*Appointment, error) {
	return q.listAppointments(ctx, "doctor_id", doctorID)
}

func (q *queries) CountAppointments(ctx context.Context) (int, error) {
	return q.count(ctx, appointmentsTable)
}

func (q *queries) SetAppointmentStatus(ctx context.Context, id int, status AppointmentStatus) error {
	upd := q.b.Update(appointmentsTable).
		Set("status", string(status)).
		Where(entsql.EQ("id", id))

	n, err := q.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("set appointment status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set appointment status: %w", ErrNotFound)
	}
	return nil
}

func (q *queries) listAppointments(ctx context.Context, column string, value int) ([]*Appointment, error) {
	sel, a := q.appointmentSelect()
	sel.Where(entsql.EQ(a.C(column), value)).OrderBy(a.C("scheduled_at"), a.C("id"))

	var out []*Appointment
	err := q.query(ctx, sel, func(rows *entsql.Rows) error {
		for rows.Next() {
			appt, err := scanAppointment(rows)
			if err != nil {
				return err
			}
			out = append(out, appt)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments by %s: %w", column, err)
	}
	return out, nil
}

// appointmentSelect joins the owning patient and doctor to fill the name edges.
func (q *queries) appointmentSelect() (*entsql.Selector, *entsql.SelectTable) {
	a := q.b.Table(appointmentsTable).As("a")
	p := q.b.Table(patientsTable).As("p")
	d := q.b.Table(doctorsTable).As("d")

	sel := q.b.Select(
		a.C("id"), a.C("patient_id"), a.C("doctor_id"), a.C("scheduled_at"), a.C("status"),
		p.C("name"), d.C("name"),
	).
		From(a).
		LeftJoin(p).On(a.C("patient_id"), p.C("id")).
		LeftJoin(d).On(a.C("doctor_id"), d.C("id"))
	return sel, a
}

func scanAppointment(rows *entsql.Rows) (*Appointment, error) {
	var (
		a                       Appointment
		status                  string
		patientName, doctorName entsql.NullString
	)
	if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ScheduledAt, &status, &patientName, &doctorName); err != nil {
		return nil, err
	}
	a.Status = AppointmentStatus(status)
	a.Edges.PatientName = patientName.String
	a.Edges.DoctorName = doctorName.String
	return &a, nil
}
