package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/api/http/handler"
)

func (r *Router) registerPatientRoutes(app *fiber.App, h *handler.PatientHandler) {
	group := app.Group("/patient")
	group.Get("/", h.Dashboard)
	group.Get("/appointments/new", h.BookForm)
	group.Post("/appointments/new", h.Book)
}
