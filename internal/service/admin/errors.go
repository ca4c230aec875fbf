package admin

import "github.com/Alijeyrad/hospital_backend/pkg/apperr"

var (
	ErrMissingCredentials = apperr.Validation("Username and password required.")
	ErrUsernameTooLong    = apperr.Validation("Username must be at most 32 characters.")
	ErrNameTooLong        = apperr.Validation("Name must be at most 64 characters.")
	ErrDoctorExists       = apperr.Conflict("Doctor with this username already exists.")
	ErrInvalidDepartment  = apperr.Validation("Department does not exist.")

	ErrDepartmentName    = apperr.Validation("Department name is required.")
	ErrDepartmentTooLong = apperr.Validation("Department fields must be at most 64 characters.")
)
