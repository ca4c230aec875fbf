package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alijeyrad/hospital_backend/internal/session"
	"github.com/Alijeyrad/hospital_backend/pkg/authorize"
	"github.com/Alijeyrad/hospital_backend/pkg/reqctx"
)

// Role is what a handler demands of the current session.
type Role string

const (
	RoleAny     Role = "any"
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Require checks the session against role. Admin and doctor checks fail with
// their own error whether or not anyone is logged in, so an anonymous caller
// is sent to the login page of the right realm. Other roles fail with
// ErrLoginRequired when there is no session.
func Require(s *session.Session, role Role) error {
	switch {
	case role == RoleAdmin:
		if s == nil || s.Kind != session.KindPatient || !s.IsAdmin {
			return ErrAdminOnly
		}
		return nil
	case role == RoleDoctor && s == nil:
		return ErrDoctorOnly
	case s == nil:
		return ErrLoginRequired
	}

	switch role {
	case RolePatient:
		if s.Kind != session.KindPatient {
			return ErrPatientOnly
		}
	case RoleDoctor:
		if s.Kind != session.KindDoctor {
			return ErrDoctorOnly
		}
	}
	return nil
}

// Guard combines the role check with the casbin permission for the action.
type Guard struct {
	authz authorize.IAuthorization
}

func NewGuard(authz authorize.IAuthorization) *Guard {
	return &Guard{authz: authz}
}

func (g *Guard) Require(s *session.Session, role Role) error {
	return Require(s, role)
}

// Authorize runs Require(s, role) and then asks casbin whether the session's
// role may perform action on object. The checked subject is always s, even if
// ctx carries another one.
func (g *Guard) Authorize(ctx context.Context, s *session.Session, role Role, object authorize.Resource, action authorize.Action) error {
	if err := Require(s, role); err != nil {
		return err
	}

	ctx = reqctx.WithSubject(ctx, reqctx.Subject{ID: s.SubjectID, Kind: string(s.Kind), IsAdmin: s.IsAdmin})
	err := authorize.MustEnforceContext(ctx, g.authz, object, action)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, authorize.ErrForbidden), errors.Is(err, authorize.ErrNoSubjectInContext):
		return ErrForbidden
	default:
		return fmt.Errorf("authorize: %w", err)
	}
}
