package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Alijeyrad/hospital_backend/internal/repo"
)

const (
	maxUsernameLen = 32
	maxTextLen     = 64
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Dashboard struct {
	TotalPatients     int `json:"total_patients"`
	TotalDoctors      int `json:"total_doctors"`
	TotalAppointments int `json:"total_appointments"`
}

type DoctorList struct {
	Doctors     []*repo.Doctor     `json:"doctors"`
	Departments []*repo.Department `json:"departments"`
}

type CreateDoctorRequest struct {
	Username string
	Password string
	Name     string
	// DepartmentID is the raw form value; empty means no department.
	DepartmentID string
}

type CreateDepartmentRequest struct {
	Name              string
	Description       string
	DoctorsRegistered string
}

// BootstrapAdmin names the administrator seeded at startup.
type BootstrapAdmin struct {
	Username string
	Password string
	Name     string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	ListDoctors(ctx context.Context) (*DoctorList, error)
	CreateDoctor(ctx context.Context, req CreateDoctorRequest) (*repo.Doctor, error)
	ListDepartments(ctx context.Context) ([]*repo.Department, error)
	CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*repo.Department, error)
	// EnsureAdmin creates the admin patient unless one with that username exists.
	EnsureAdmin(ctx context.Context, b BootstrapAdmin) (created bool, err error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type adminService struct {
	store repo.Store
}

func New(store repo.Store) Service {
	return &adminService{store: store}
}

func (s *adminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	err := s.store.WithTx(ctx, func(q repo.Querier) error {
		var err error
		if d.TotalPatients, err = q.CountPatients(ctx); err != nil {
			return err
		}
		if d.TotalDoctors, err = q.CountDoctors(ctx); err != nil {
			return err
		}
		d.TotalAppointments, err = q.CountAppointments(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return &d, nil
}

func (s *adminService) ListDoctors(ctx context.Context) (*DoctorList, error) {
	var out DoctorList
	err := s.store.WithTx(ctx, func(q repo.Querier) error {
		var err error
		if out.Doctors, err = q.ListDoctors(ctx); err != nil {
			return err
		}
		out.Departments, err = q.ListDepartments(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return &out, nil
}

func (s *adminService) CreateDoctor(ctx context.Context, req CreateDoctorRequest) (*repo.Doctor, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}
	if len(req.Username) > maxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	if len(req.Name) > maxTextLen {
		return nil, ErrNameTooLong
	}

	d := &repo.Doctor{Username: req.Username, Name: req.Name}
	if raw := strings.TrimSpace(req.DepartmentID); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, ErrInvalidDepartment
		}
		d.DepartmentID = &id
	}
	if err := d.SetCredential(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err := s.store.WithTx(ctx, func(q repo.Querier) error {
		_, err := q.DoctorByUsername(ctx, req.Username)
		if err == nil {
			return ErrDoctorExists
		}
		if !repo.IsNotFound(err) {
			return err
		}

		if d.DepartmentID != nil {
			_, err := q.DepartmentByID(ctx, *d.DepartmentID)
			if repo.IsNotFound(err) {
				return ErrInvalidDepartment
			}
			if err != nil {
				return err
			}
		}

		return q.CreateDoctor(ctx, d)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrDoctorExists), repo.IsDuplicate(err):
		return nil, ErrDoctorExists
	case errors.Is(err, ErrInvalidDepartment), errors.Is(err, repo.ErrReference):
		return nil, ErrInvalidDepartment
	default:
		return nil, fmt.Errorf("create doctor: %w", err)
	}

	slog.InfoContext(ctx, "doctor created", "doctor_id", d.ID, "department_id", d.DepartmentID)
	return d, nil
}

func (s *adminService) ListDepartments(ctx context.Context) ([]*repo.Department, error) {
	deps, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return deps, nil
}

func (s *adminService) CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*repo.Department, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrDepartmentName
	}
	for _, v := range []string{req.Name, req.Description, req.DoctorsRegistered} {
		if len(v) > maxTextLen {
			return nil, ErrDepartmentTooLong
		}
	}

	d := &repo.Department{
		Name:              req.Name,
		Description:       req.Description,
		DoctorsRegistered: req.DoctorsRegistered,
	}
	err := s.store.WithTx(ctx, func(q repo.Querier) error {
		return q.CreateDepartment(ctx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}

	slog.InfoContext(ctx, "department created", "department_id", d.ID, "name", d.Name)
	return d, nil
}

func (s *adminService) EnsureAdmin(ctx context.Context, b BootstrapAdmin) (bool, error) {
	if b.Username == "" || b.Password == "" {
		return false, ErrMissingCredentials
	}

	created := false
	err := s.store.WithTx(ctx, func(q repo.Querier) error {
		existing, err := q.PatientByUsername(ctx, b.Username)
		if err == nil {
			if !existing.IsAdmin {
				slog.WarnContext(ctx, "bootstrap admin username belongs to a non-admin patient",
					"username", b.Username, "patient_id", existing.ID)
			}
			return nil
		}
		if !repo.IsNotFound(err) {
			return err
		}

		p := &repo.Patient{Username: b.Username, Name: b.Name, IsAdmin: true}
		if err := p.SetCredential(b.Password); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := q.CreatePatient(ctx, p); err != nil {
			return err
		}
		created = true
		return nil
	})
	// Another instance won the race.
	if repo.IsDuplicate(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	if created {
		slog.InfoContext(ctx, "admin account created", "username", b.Username)
	}
	return created, nil
}
