package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(app *fiber.App, h *handler.AuthHandler, limit fiber.Handler) {
	app.Get("/", h.Index)
	app.Get("/login", h.LoginForm)
	app.Post("/login", limit, h.Login)
	app.Get("/logout", h.Logout)
	app.Get("/register", h.RegisterForm)
	app.Post("/register", limit, h.Register)
	app.Get("/doctor/login", h.DoctorLoginForm)
	app.Post("/doctor/login", limit, h.DoctorLogin)
}
