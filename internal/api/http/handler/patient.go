package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/hospital_backend/internal/service/admin"
	"github.com/Alijeyrad/hospital_backend/internal/service/appointment"
	"github.com/Alijeyrad/hospital_backend/internal/service/auth"
	"github.com/Alijeyrad/hospital_backend/pkg/authorize"
)

type PatientHandler struct {
	appts     appointment.Service
	directory admin.Service
	guard     *auth.Guard
}

func NewPatientHandler(appts appointment.Service, directory admin.Service, guard *auth.Guard) *PatientHandler {
	return &PatientHandler{appts: appts, directory: directory, guard: guard}
}

// GET /patient
func (h *PatientHandler) Dashboard(c fiber.Ctx) error {
	s := middleware.SessionFromFiber(c)
	if err := h.guard.Authorize(c.Context(), s, auth.RolePatient, authorize.ResourceAppointment, authorize.ActionList); err != nil {
		return fail(c, err, "/login")
	}

	appts, err := h.appts.ListForPatient(c.Context(), s.SubjectID)
	if err != nil {
		return fail(c, err, "/patient")
	}
	return ok(c, fiber.Map{"patient_id": s.SubjectID, "appointments": appts})
}

// GET /patient/appointments/new
func (h *PatientHandler) BookForm(c fiber.Ctx) error {
	s := middleware.SessionFromFiber(c)
	if err := h.guard.Authorize(c.Context(), s, auth.RolePatient, authorize.ResourceDoctor, authorize.ActionList); err != nil {
		return fail(c, err, "/login")
	}

	list, err := h.directory.ListDoctors(c.Context())
	if err != nil {
		return fail(c, err, "/patient")
	}
	return ok(c, fiber.Map{"doctors": list.Doctors})
}

// POST /patient/appointments/new
func (h *PatientHandler) Book(c fiber.Ctx) error {
	const back = "/patient/appointments/new"

	s := middleware.SessionFromFiber(c)
	if err := h.guard.Authorize(c.Context(), s, auth.RolePatient, authorize.ResourceAppointment, authorize.ActionCreate); err != nil {
		return fail(c, err, "/login")
	}

	var body struct {
		DoctorID string `json:"doctor_id" form:"doctor_id"`
		Date     string `json:"date" form:"date"`
		Time     string `json:"time" form:"time"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "Invalid request body.", back)
	}

	appt, err := h.appts.Book(c.Context(), appointment.BookRequest{
		PatientID: s.SubjectID,
		DoctorID:  body.DoctorID,
		Date:      body.Date,
		Time:      body.Time,
	})
	if err != nil {
		return fail(c, err, back)
	}
	return done(c, fiber.StatusCreated, appt, "Appointment booked!", "/patient")
}
