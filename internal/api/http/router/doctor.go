package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/api/http/handler"
)

// /doctor/login belongs to the auth routes.
func (r *Router) registerDoctorRoutes(app *fiber.App, h *handler.DoctorHandler) {
	group := app.Group("/doctor")
	group.Get("/", h.Dashboard)
	group.Get("/appointments/:id", h.Appointment)
	group.Post("/appointments/:id", h.RecordTreatment)
}
