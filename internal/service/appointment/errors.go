package appointment

import "github.com/Alijeyrad/hospital_backend/pkg/apperr"

var (
	ErrMissingFields  = apperr.Validation("Doctor, date and time are required.")
	ErrInvalidDate    = apperr.Validation("Invalid date or time format.")
	ErrUnknownDoctor  = apperr.Validation("Selected doctor does not exist.")
	ErrUnknownPatient = apperr.Validation("Patient does not exist.")

	ErrNotFound    = apperr.NotFound("Appointment not found.")
	ErrNotAssigned = apperr.Authorization("You are not assigned to this appointment.")

	ErrMissingTreatment = apperr.Validation("Diagnosis and prescription are required.")
	ErrTreatmentTooLong = apperr.Validation("Treatment text is too long.")
)
