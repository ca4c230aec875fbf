package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Alijeyrad/hospital_backend/internal/events"
	"github.com/Alijeyrad/hospital_backend/internal/repo"
)

// Column sizes of the treatments table.
const (
	maxDiagnosisLen = 256
	maxNotesLen     = 512
)

// Accepted input layouts for the booking form.
const (
	dateLayout        = "2006-01-02"
	timeLayout        = "15:04"
	timeLayoutSeconds = "15:04:05"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	PatientID int
	// DoctorID, Date and Time are raw form values.
	DoctorID string
	Date     string
	Time     string
}

type TreatmentRequest struct {
	AppointmentID int
	DoctorID      int
	Diagnosis     string
	Prescription  string
	Notes         string
}

// Detail is an appointment with its treatment, if one was recorded.
type Detail struct {
	Appointment *repo.Appointment `json:"appointment"`
	Treatment   *repo.Treatment   `json:"treatment,omitempty"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, req BookRequest) (*repo.Appointment, error)
	ListForPatient(ctx context.Context, patientID int) ([]*repo.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID int) ([]*repo.Appointment, error)
	Detail(ctx context.Context, appointmentID, doctorID int) (*Detail, error)
	// RecordTreatment creates or replaces the appointment's treatment and
	// marks the appointment completed.
	RecordTreatment(ctx context.Context, req TreatmentRequest) (*repo.Treatment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	store repo.Store
	pub   events.Publisher
	loc   *time.Location
}

// New returns the service. Booking times are interpreted in loc; a nil
// publisher or location falls back to events.Nop and time.Local.
func New(store repo.Store, pub events.Publisher, loc *time.Location) Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &appointmentService{store: store, pub: pub, loc: loc}
}

// ParseSchedule combines a "YYYY-MM-DD" date and an "HH:MM" or "HH:MM:SS"
// time into an instant in loc.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	layout := dateLayout + " " + timeLayout
	if strings.Count(clock, ":") == 2 {
		layout = dateLayout + " " + timeLayoutSeconds
	}
	t, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (s *appointmentService) Book(ctx context.Context, req BookRequest) (*repo.Appointment, error) {
	if req.PatientID == 0 || strings.TrimSpace(req.DoctorID) == "" || req.Date == "" || req.Time == "" {
		return nil, ErrMissingFields
	}
	doctorID, err := strconv.Atoi(strings.TrimSpace(req.DoctorID))
	if err != nil {
		return nil, ErrUnknownDoctor
	}
	at, err := ParseSchedule(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, err
	}

	appt := &repo.Appointment{
		PatientID:   req.PatientID,
		DoctorID:    doctorID,
		ScheduledAt: at,
		Status:      repo.StatusPending,
	}
	err = s.store.WithTx(ctx, func(q repo.Querier) error {
		if _, err := q.PatientByID(ctx, req.PatientID); err != nil {
			if repo.IsNotFound(err) {
				return ErrUnknownPatient
			}
			return err
		}
		doc, err := q.DoctorByID(ctx, doctorID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrUnknownDoctor
			}
			return err
		}
		if err := q.CreateAppointment(ctx, appt); err != nil {
			return err
		}
		appt.Edges.DoctorName = doc.Name
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownDoctor), errors.Is(err, ErrUnknownPatient):
		return nil, err
	case errors.Is(err, repo.ErrReference):
		return nil, ErrUnknownDoctor
	default:
		return nil, fmt.Errorf("book appointment: %w", err)
	}

	slog.InfoContext(ctx, "appointment booked",
		"appointment_id", appt.ID,
		"patient_id", appt.PatientID,
		"doctor_id", appt.DoctorID,
	)
	s.publish(ctx, events.Event{
		Type:      events.AppointmentBooked,
		ID:        appt.ID,
		PatientID: appt.PatientID,
		DoctorID:  appt.DoctorID,
	})
	return appt, nil
}

func (s *appointmentService) ListForPatient(ctx context.Context, patientID int) ([]*repo.Appointment, error) {
	appts, err := s.store.ListAppointmentsByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	return appts, nil
}

func (s *appointmentService) ListForDoctor(ctx context.Context, doctorID int) ([]*repo.Appointment, error) {
	appts, err := s.store.ListAppointmentsByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}
	return appts, nil
}

func (s *appointmentService) Detail(ctx context.Context, appointmentID, doctorID int) (*Detail, error) {
	var d Detail
	err := s.store.WithTx(ctx, func(q repo.Querier) error {
		appt, err := assigned(ctx, q, appointmentID, doctorID)
		if err != nil {
			return err
		}
		d.Appointment = appt

		t, err := q.TreatmentByAppointment(ctx, appointmentID)
		if err != nil && !repo.IsNotFound(err) {
			return err
		}
		d.Treatment = t
		return nil
	})
	if err != nil {
		return nil, classify("appointment detail", err)
	}
	return &d, nil
}

func (s *appointmentService) RecordTreatment(ctx context.Context, req TreatmentRequest) (*repo.Treatment, error) {
	var t *repo.Treatment
	var appt *repo.Appointment
	err := s.store.WithTx(ctx, func(q repo.Querier) error {
		var err error
		// Existence and assignment are checked before the form fields so a
		// stranger learns nothing about the appointment.
		if appt, err = assigned(ctx, q, req.AppointmentID, req.DoctorID); err != nil {
			return err
		}
		if err := validateTreatment(req); err != nil {
			return err
		}

		t, err = q.TreatmentByAppointment(ctx, req.AppointmentID)
		switch {
		case repo.IsNotFound(err):
			t = &repo.Treatment{AppointmentID: req.AppointmentID}
		case err != nil:
			return err
		}
		t.Diagnosis = req.Diagnosis
		t.Prescription = req.Prescription
		t.Notes = req.Notes

		if t.ID == 0 {
			err = q.CreateTreatment(ctx, t)
		} else {
			err = q.UpdateTreatment(ctx, t)
		}
		if err != nil {
			return err
		}
		return q.SetAppointmentStatus(ctx, req.AppointmentID, repo.StatusCompleted)
	})
	if err != nil {
		return nil, classify("record treatment", err)
	}

	slog.InfoContext(ctx, "treatment recorded",
		"appointment_id", req.AppointmentID,
		"treatment_id", t.ID,
		"doctor_id", req.DoctorID,
	)
	s.publish(ctx, events.Event{
		Type:      events.TreatmentRecorded,
		ID:        req.AppointmentID,
		PatientID: appt.PatientID,
		DoctorID:  appt.DoctorID,
	})
	return t, nil
}

// assigned loads the appointment and checks it belongs to doctorID.
func assigned(ctx context.Context, q repo.Querier, appointmentID, doctorID int) (*repo.Appointment, error) {
	appt, err := q.AppointmentByID(ctx, appointmentID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, ErrNotAssigned
	}
	return appt, nil
}

func validateTreatment(req TreatmentRequest) error {
	if strings.TrimSpace(req.Diagnosis) == "" || strings.TrimSpace(req.Prescription) == "" {
		return ErrMissingTreatment
	}
	if len(req.Diagnosis) > maxDiagnosisLen || len(req.Prescription) > maxDiagnosisLen || len(req.Notes) > maxNotesLen {
		return ErrTreatmentTooLong
	}
	return nil
}

func classify(op string, err error) error {
	for _, sentinel := range []error{ErrNotFound, ErrNotAssigned, ErrMissingTreatment, ErrTreatmentTooLong} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// publish runs after commit; a broker failure never undoes the write.
func (s *appointmentService) publish(ctx context.Context, ev events.Event) {
	if err := s.pub.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish event failed", "type", ev.Type, "id", ev.ID, "err", err)
	}
}
