package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/hospital_backend/internal/service/appointment"
	"github.com/Alijeyrad/hospital_backend/internal/service/auth"
	"github.com/Alijeyrad/hospital_backend/pkg/authorize"
)

type DoctorHandler struct {
	appts appointment.Service
	guard *auth.Guard
}

func NewDoctorHandler(appts appointment.Service, guard *auth.Guard) *DoctorHandler {
	return &DoctorHandler{appts: appts, guard: guard}
}

// GET /doctor
func (h *DoctorHandler) Dashboard(c fiber.Ctx) error {
	s := middleware.SessionFromFiber(c)
	if err := h.guard.Authorize(c.Context(), s, auth.RoleDoctor, authorize.ResourceAppointment, authorize.ActionList); err != nil {
		return fail(c, err, "/doctor/login")
	}

	appts, err := h.appts.ListForDoctor(c.Context(), s.SubjectID)
	if err != nil {
		return fail(c, err, "/doctor")
	}
	return ok(c, fiber.Map{"doctor_id": s.SubjectID, "appointments": appts})
}

// GET /doctor/appointments/:id
func (h *DoctorHandler) Appointment(c fiber.Ctx) error {
	s := middleware.SessionFromFiber(c)
	if err := h.guard.Authorize(c.Context(), s, auth.RoleDoctor, authorize.ResourceAppointment, authorize.ActionRead); err != nil {
		return fail(c, err, "/doctor/login")
	}

	id, err := appointmentID(c)
	if err != nil {
		return fail(c, err, "/doctor")
	}

	d, err := h.appts.Detail(c.Context(), id, s.SubjectID)
	if err != nil {
		return fail(c, err, "/doctor")
	}
	return ok(c, d)
}

// POST /doctor/appointments/:id
func (h *DoctorHandler) RecordTreatment(c fiber.Ctx) error {
	s := middleware.SessionFromFiber(c)
	if err := h.guard.Authorize(c.Context(), s, auth.RoleDoctor, authorize.ResourceTreatment, authorize.ActionUpdate); err != nil {
		return fail(c, err, "/doctor/login")
	}

	id, err := appointmentID(c)
	if err != nil {
		return fail(c, err, "/doctor")
	}
	back := "/doctor/appointments/" + strconv.Itoa(id)

	var body struct {
		Diagnosis    string `json:"diagnosis" form:"diagnosis"`
		Prescription string `json:"prescription" form:"prescription"`
		Notes        string `json:"notes" form:"notes"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "Invalid request body.", back)
	}

	t, err := h.appts.RecordTreatment(c.Context(), appointment.TreatmentRequest{
		AppointmentID: id,
		DoctorID:      s.SubjectID,
		Diagnosis:     body.Diagnosis,
		Prescription:  body.Prescription,
		Notes:         body.Notes,
	})
	if err != nil {
		return fail(c, err, back)
	}
	return done(c, fiber.StatusOK, t, "Treatment saved.", "/doctor")
}

// appointmentID parses the :id route param; anything but a positive integer
// is treated as an unknown appointment.
func appointmentID(c fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, appointment.ErrNotFound
	}
	return id, nil
}
