package authorize

import (
	"context"
	"errors"

	"github.com/Alijeyrad/hospital_backend/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// RoleFromContext returns the role of the subject acting on ctx.
func RoleFromContext(ctx context.Context) (Role, error) {
	s, ok := reqctx.SubjectFromContext(ctx)
	if !ok {
		return "", ErrNoSubjectInContext
	}
	role, ok := RoleFor(s.Kind, s.IsAdmin)
	if !ok {
		return "", ErrNoSubjectInContext
	}
	return role, nil
}

// MustEnforceContext checks the permission for the subject on ctx.
func MustEnforceContext(ctx context.Context, auth IAuthorization, object Resource, action Action) error {
	role, err := RoleFromContext(ctx)
	if err != nil {
		return err
	}
	return auth.MustEnforce(ctx, role, object, action)
}
