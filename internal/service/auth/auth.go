package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alijeyrad/hospital_backend/internal/repo"
	"github.com/Alijeyrad/hospital_backend/internal/session"
)

const (
	MaxUsernameLen = 32
	MaxNameLen     = 64
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterRequest struct {
	Username string
	Password string
	Name     string
}

type LoginRequest struct {
	Username string
	Password string
	// PrevToken is the caller's current session token, if any. It is discarded.
	PrevToken string
}

type LoginResult struct {
	Token    string
	Session  *session.Session
	Redirect string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Register creates a non-admin patient. The caller still has to log in.
	Register(ctx context.Context, req RegisterRequest) (*repo.Patient, error)
	// Login authenticates in the patient/admin realm.
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// LoginDoctor authenticates in the doctor realm.
	LoginDoctor(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// Session resolves a cookie token; nil means anonymous.
	Session(ctx context.Context, token string) (*session.Session, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	store    repo.Store
	sessions *session.Manager
}

func New(store repo.Store, sessions *session.Manager) Service {
	return &authService{store: store, sessions: sessions}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*repo.Patient, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}
	if len(req.Username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	if len(req.Name) > MaxNameLen {
		return nil, ErrNameTooLong
	}

	p := &repo.Patient{Username: req.Username, Name: req.Name}
	if err := p.SetCredential(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err := s.store.WithTx(ctx, func(q repo.Querier) error {
		_, err := q.PatientByUsername(ctx, req.Username)
		if err == nil {
			return ErrUsernameTaken
		}
		if !repo.IsNotFound(err) {
			return err
		}
		return q.CreatePatient(ctx, p)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrUsernameTaken), repo.IsDuplicate(err):
		return nil, ErrUsernameTaken
	default:
		return nil, fmt.Errorf("register: %w", err)
	}

	slog.InfoContext(ctx, "patient registered", "patient_id", p.ID)
	return p, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	p, err := s.store.PatientByUsername(ctx, req.Username)
	if repo.IsNotFound(err) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !p.VerifyCredential(req.Password) {
		return nil, ErrInvalidCredential
	}
	if p.CredentialStale() {
		s.rehash(ctx, "patient", p.ID, func() error {
			if err := p.SetCredential(req.Password); err != nil {
				return err
			}
			return s.store.UpdatePatientCredential(ctx, p)
		})
	}

	return s.establish(ctx, req.PrevToken, session.Subject{
		ID:      p.ID,
		Kind:    session.KindPatient,
		IsAdmin: p.IsAdmin,
	})
}

func (s *authService) LoginDoctor(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	d, err := s.store.DoctorByUsername(ctx, req.Username)
	if repo.IsNotFound(err) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctor login: %w", err)
	}
	if !d.VerifyCredential(req.Password) {
		return nil, ErrInvalidCredential
	}
	if d.CredentialStale() {
		s.rehash(ctx, "doctor", d.ID, func() error {
			if err := d.SetCredential(req.Password); err != nil {
				return err
			}
			return s.store.UpdateDoctorCredential(ctx, d)
		})
	}

	return s.establish(ctx, req.PrevToken, session.Subject{ID: d.ID, Kind: session.KindDoctor})
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Teardown(ctx, token)
}

func (s *authService) Session(ctx context.Context, token string) (*session.Session, error) {
	return s.sessions.Load(ctx, token)
}

// rehash upgrades a hash made with older argon2id parameters. Failure is
// logged only; the old hash keeps verifying.
func (s *authService) rehash(ctx context.Context, kind string, id int, upgrade func() error) {
	if err := upgrade(); err != nil {
		slog.WarnContext(ctx, "credential rehash failed", "kind", kind, "subject_id", id, "error", err)
		return
	}
	slog.InfoContext(ctx, "credential rehashed", "kind", kind, "subject_id", id)
}

func (s *authService) establish(ctx context.Context, prevToken string, subj session.Subject) (*LoginResult, error) {
	token, sess, err := s.sessions.Establish(ctx, prevToken, subj)
	if err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}

	slog.InfoContext(ctx, "login", "kind", sess.Kind, "subject_id", sess.SubjectID, "admin", sess.IsAdmin)
	return &LoginResult{Token: token, Session: sess, Redirect: DashboardFor(sess)}, nil
}

// DashboardFor is where a subject lands after login or on "/".
func DashboardFor(s *session.Session) string {
	switch {
	case s == nil:
		return "/login"
	case s.Kind == session.KindDoctor:
		return "/doctor"
	case s.IsAdmin:
		return "/admin"
	default:
		return "/patient"
	}
}
