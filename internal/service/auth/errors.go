package auth

import "github.com/Alijeyrad/hospital_backend/pkg/apperr"

var (
	ErrMissingCredentials = apperr.Validation("Username or password cannot be empty.")
	ErrUsernameTooLong    = apperr.Validation("Username must be at most 32 characters.")
	ErrNameTooLong        = apperr.Validation("Name must be at most 64 characters.")
	ErrUsernameTaken      = apperr.Conflict("Patient with this username already exists.")

	ErrPatientNotFound   = apperr.Authentication("User does not exist.")
	ErrDoctorNotFound    = apperr.Authentication("Doctor does not exist.")
	ErrInvalidCredential = apperr.Authentication("Incorrect password.")

	ErrLoginRequired = apperr.Authentication("Please log in first.")
	ErrAdminOnly     = apperr.Authorization("Admin access only.")
	ErrPatientOnly   = apperr.Authorization("Patient access only.")
	ErrDoctorOnly    = apperr.Authorization("Doctor access only. Please login as doctor.")
	ErrForbidden     = apperr.Authorization("You are not allowed to do that.")
)
