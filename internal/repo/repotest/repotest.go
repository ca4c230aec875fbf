// Package repotest provides an in-memory repo.Store for service and handler tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Alijeyrad/hospital_backend/internal/repo"
)

// Store keeps every table in maps. WithTx works on a copy that replaces the
// live state only when fn succeeds.
type Store struct {
	mu sync.Mutex
	st *state
}

var (
	_ repo.Store   = (*Store)(nil)
	_ repo.Querier = (*state)(nil)
)

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) WithTx(ctx context.Context, fn func(q repo.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Every direct call runs as its own transaction.
func (s *Store) do(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) CreatePatient(ctx context.Context, p *repo.Patient) error {
	return s.do(func(st *state) error { return st.CreatePatient(ctx, p) })
}

func (s *Store) PatientByID(ctx context.Context, id int) (p *repo.Patient, err error) {
	err = s.do(func(st *state) error { p, err = st.PatientByID(ctx, id); return err })
	return p, err
}

func (s *Store) PatientByUsername(ctx context.Context, username string) (p *repo.Patient, err error) {
	err = s.do(func(st *state) error { p, err = st.PatientByUsername(ctx, username); return err })
	return p, err
}

func (s *Store) CountPatients(ctx context.Context) (n int, err error) {
	err = s.do(func(st *state) error { n, err = st.CountPatients(ctx); return err })
	return n, err
}

func (s *Store) UpdatePatientCredential(ctx context.Context, p *repo.Patient) error {
	return s.do(func(st *state) error { return st.UpdatePatientCredential(ctx, p) })
}

func (s *Store) UpdateDoctorCredential(ctx context.Context, d *repo.Doctor) error {
	return s.do(func(st *state) error { return st.UpdateDoctorCredential(ctx, d) })
}

func (s *Store) CreateDoctor(ctx context.Context, d *repo.Doctor) error {
	return s.do(func(st *state) error { return st.CreateDoctor(ctx, d) })
}

func (s *Store) DoctorByID(ctx context.Context, id int) (d *repo.Doctor, err error) {
	err = s.do(func(st *state) error { d, err = st.DoctorByID(ctx, id); return err })
	return d, err
}

func (s *Store) DoctorByUsername(ctx context.Context, username string) (d *repo.Doctor, err error) {
	err = s.do(func(st *state) error { d, err = st.DoctorByUsername(ctx, username); return err })
	return d, err
}

func (s *Store) ListDoctors(ctx context.Context) (out []*repo.Doctor, err error) {
	err = s.do(func(st *state) error { out, err = st.ListDoctors(ctx); return err })
	return out, err
}

func (s *Store) CountDoctors(ctx context.Context) (n int, err error) {
	err = s.do(func(st *state) error { n, err = st.CountDoctors(ctx); return err })
	return n, err
}

func (s *Store) CreateDepartment(ctx context.Context, d *repo.Department) error {
	return s.do(func(st *state) error { return st.CreateDepartment(ctx, d) })
}

func (s *Store) DepartmentByID(ctx context.Context, id int) (d *repo.Department, err error) {
	err = s.do(func(st *state) error { d, err = st.DepartmentByID(ctx, id); return err })
	return d, err
}

func (s *Store) ListDepartments(ctx context.Context) (out []*repo.Department, err error) {
	err = s.do(func(st *state) error { out, err = st.ListDepartments(ctx); return err })
	return out, err
}

func (s *Store) CreateAppointment(ctx context.Context, a *repo.Appointment) error {
	return s.do(func(st *state) error { return st.CreateAppointment(ctx, a) })
}

func (s *Store) AppointmentByID(ctx context.Context, id int) (a *repo.Appointment, err error) {
	err = s.do(func(st *state) error { a, err = st.AppointmentByID(ctx, id); return err })
	return a, err
}

func (s *Store) ListAppointmentsByPatient(ctx context.Context, patientID int) (out []*repo.Appointment, err error) {
	err = s.do(func(st *state) error { out, err = st.ListAppointmentsByPatient(ctx, patientID); return err })
	return out, err
}

func (s *Store) ListAppointmentsByDoctor(ctx context.Context, doctorID int) (out []*repo.Appointment, err error) {
	err = s.do(func(st *state) error { out, err = st.ListAppointmentsByDoctor(ctx, doctorID); return err })
	return out, err
}

func (s *Store) CountAppointments(ctx context.Context) (n int, err error) {
	err = s.do(func(st *state) error { n, err = st.CountAppointments(ctx); return err })
	return n, err
}

func (s *Store) SetAppointmentStatus(ctx context.Context, id int, status repo.AppointmentStatus) error {
	return s.do(func(st *state) error { return st.SetAppointmentStatus(ctx, id, status) })
}

func (s *Store) TreatmentByAppointment(ctx context.Context, appointmentID int) (t *repo.Treatment, err error) {
	err = s.do(func(st *state) error { t, err = st.TreatmentByAppointment(ctx, appointmentID); return err })
	return t, err
}

func (s *Store) CreateTreatment(ctx context.Context, t *repo.Treatment) error {
	return s.do(func(st *state) error { return st.CreateTreatment(ctx, t) })
}

func (s *Store) UpdateTreatment(ctx context.Context, t *repo.Treatment) error {
	return s.do(func(st *state) error { return st.UpdateTreatment(ctx, t) })
}

// Treatments returns every stored treatment for appointmentID. Tests use it to
// check that upserts never duplicate.
func (s *Store) Treatments(appointmentID int) []repo.Treatment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []repo.Treatment
	for _, t := range s.st.treatments {
		if t.AppointmentID == appointmentID {
			out = append(out, t)
		}
	}
	return out
}

type state struct {
	seq          int
	patients     map[int]repo.Patient
	doctors      map[int]repo.Doctor
	departments  map[int]repo.Department
	appointments map[int]repo.Appointment
	treatments   map[int]repo.Treatment
}

func newState() *state {
	return &state{
		patients:     map[int]repo.Patient{},
		doctors:      map[int]repo.Doctor{},
		departments:  map[int]repo.Department{},
		appointments: map[int]repo.Appointment{},
		treatments:   map[int]repo.Treatment{},
	}
}

func (st *state) clone() *state {
	c := newState()
	c.seq = st.seq
	for k, v := range st.patients {
		c.patients[k] = v
	}
	for k, v := range st.doctors {
		c.doctors[k] = v
	}
	for k, v := range st.departments {
		c.departments[k] = v
	}
	for k, v := range st.appointments {
		c.appointments[k] = v
	}
	for k, v := range st.treatments {
		c.treatments[k] = v
	}
	return c
}

func (st *state) next() int {
	st.seq++
	return st.seq
}

func (st *state) CreatePatient(_ context.Context, p *repo.Patient) error {
	for _, existing := range st.patients {
		if existing.Username == p.Username {
			return fmt.Errorf("create patient: %w", repo.ErrDuplicate)
		}
	}
	p.ID = st.next()
	st.patients[p.ID] = *p
	return nil
}

func (st *state) PatientByID(_ context.Context, id int) (*repo.Patient, error) {
	p, ok := st.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient by id: %w", repo.ErrNotFound)
	}
	return &p, nil
}

func (st *state) PatientByUsername(_ context.Context, username string) (*repo.Patient, error) {
	for _, p := range st.patients {
		if p.Username == username {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("patient by username: %w", repo.ErrNotFound)
}

func (st *state) CountPatients(context.Context) (int, error) { return len(st.patients), nil }

func (st *state) CreateDoctor(_ context.Context, d *repo.Doctor) error {
	for _, existing := range st.doctors {
		if existing.Username == d.Username {
			return fmt.Errorf("create doctor: %w", repo.ErrDuplicate)
		}
	}
	if d.DepartmentID != nil {
		if _, ok := st.departments[*d.DepartmentID]; !ok {
			return fmt.Errorf("create doctor: %w", repo.ErrReference)
		}
	}
	d.ID = st.next()
	st.doctors[d.ID] = *d
	return nil
}

func (st *state) DoctorByID(_ context.Context, id int) (*repo.Doctor, error) {
	d, ok := st.doctors[id]
	if !ok {
		return nil, fmt.Errorf("doctor by id: %w", repo.ErrNotFound)
	}
	return &d, nil
}

func (st *state) DoctorByUsername(_ context.Context, username string) (*repo.Doctor, error) {
	for _, d := range st.doctors {
		if d.Username == username {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("doctor by username: %w", repo.ErrNotFound)
}

func (st *state) ListDoctors(context.Context) ([]*repo.Doctor, error) {
	out := make([]*repo.Doctor, 0, len(st.doctors))
	for _, d := range st.doctors {
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (st *state) CountDoctors(context.Context) (int, error) { return len(st.doctors), nil }

func (st *state) CreateDepartment(_ context.Context, d *repo.Department) error {
	d.ID = st.next()
	st.departments[d.ID] = *d
	return nil
}

func (st *state) DepartmentByID(_ context.Context, id int) (*repo.Department, error) {
	d, ok := st.departments[id]
	if !ok {
		return nil, fmt.Errorf("department by id: %w", repo.ErrNotFound)
	}
	return &d, nil
}

func (st *state) ListDepartments(context.Context) ([]*repo.Department, error) {
	out := make([]*repo.Department, 0, len(st.departments))
	for _, d := range st.departments {
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (st *state) CreateAppointment(_ context.Context, a *repo.Appointment) error {
	if _, ok := st.patients[a.PatientID]; !ok {
		return fmt.Errorf("create appointment: %w", repo.ErrReference)
	}
	if _, ok := st.doctors[a.DoctorID]; !ok {
		return fmt.Errorf("create appointment: %w", repo.ErrReference)
	}
	if a.Status == "" {
		a.Status = repo.StatusPending
	}
	a.ID = st.next()
	st.appointments[a.ID] = *a
	return nil
}

func (st *state) AppointmentByID(_ context.Context, id int) (*repo.Appointment, error) {
	a, ok := st.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment by id: %w", repo.ErrNotFound)
	}
	return st.withEdges(a), nil
}

func (st *state) ListAppointmentsByPatient(_ context.Context, patientID int) ([]*repo.Appointment, error) {
	return st.listAppointments(func(a repo.Appointment) bool { return a.PatientID == patientID }), nil
}

func (st *state) ListAppointmentsByDoctor(_ context.Context, doctorID int) ([]*repo.Appointment, error) {
	return st.listAppointments(func(a repo.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (st *state) CountAppointments(context.Context) (int, error) { return len(st.appointments), nil }

// The credential updates copy the whole entity; only the hash can differ
// from what a lookup returned.
func (st *state) UpdatePatientCredential(_ context.Context, p *repo.Patient) error {
	if _, ok := st.patients[p.ID]; !ok {
		return fmt.Errorf("update patient credential: %w", repo.ErrNotFound)
	}
	st.patients[p.ID] = *p
	return nil
}

func (st *state) UpdateDoctorCredential(_ context.Context, d *repo.Doctor) error {
	if _, ok := st.doctors[d.ID]; !ok {
		return fmt.Errorf("update doctor credential: %w", repo.ErrNotFound)
	}
	st.doctors[d.ID] = *d
	return nil
}

func (st *state) SetAppointmentStatus(_ context.Context, id int, status repo.AppointmentStatus) error {
	a, ok := st.appointments[id]
	if !ok {
		return fmt.Errorf("set appointment status: %w", repo.ErrNotFound)
	}
	a.Status = status
	st.appointments[id] = a
	return nil
}

func (st *state) TreatmentByAppointment(_ context.Context, appointmentID int) (*repo.Treatment, error) {
	for _, t := range st.treatments {
		if t.AppointmentID == appointmentID {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("treatment by appointment: %w", repo.ErrNotFound)
}

func (st *state) CreateTreatment(_ context.Context, t *repo.Treatment) error {
	if _, ok := st.appointments[t.AppointmentID]; !ok {
		return fmt.Errorf("create treatment: %w", repo.ErrReference)
	}
	for _, existing := range st.treatments {
		if existing.AppointmentID == t.AppointmentID {
			return fmt.Errorf("create treatment: %w", repo.ErrDuplicate)
		}
	}
	t.ID = st.next()
	st.treatments[t.ID] = *t
	return nil
}

func (st *state) UpdateTreatment(_ context.Context, t *repo.Treatment) error {
	if _, ok := st.treatments[t.ID]; !ok {
		return fmt.Errorf("update treatment: %w", repo.ErrNotFound)
	}
	st.treatments[t.ID] = *t
	return nil
}

func (st *state) listAppointments(keep func(repo.Appointment) bool) []*repo.Appointment {
	var out []*repo.Appointment
	for _, a := range st.appointments {
		if keep(a) {
			out = append(out, st.withEdges(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

func (st *state) withEdges(a repo.Appointment) *repo.Appointment {
	a.Edges.PatientName = st.patients[a.PatientID].Name
	a.Edges.DoctorName = st.doctors[a.DoctorID].Name
	return &a
}
