package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/api/http/handler"
)

func (r *Router) registerAdminRoutes(app *fiber.App, h *handler.AdminHandler) {
	group := app.Group("/admin")
	group.Get("/", h.Dashboard)
	group.Get("/doctors", h.Doctors)
	group.Get("/doctors/new", h.NewDoctorForm)
	group.Post("/doctors/new", h.CreateDoctor)
}
