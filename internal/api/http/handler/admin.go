package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/hospital_backend/internal/service/admin"
	"github.com/Alijeyrad/hospital_backend/internal/service/auth"
	"github.com/Alijeyrad/hospital_backend/pkg/authorize"
)

type AdminHandler struct {
	svc   admin.Service
	guard *auth.Guard
}

func NewAdminHandler(svc admin.Service, guard *auth.Guard) *AdminHandler {
	return &AdminHandler{svc: svc, guard: guard}
}

// GET /admin
func (h *AdminHandler) Dashboard(c fiber.Ctx) error {
	err := h.guard.Authorize(c.Context(), middleware.SessionFromFiber(c), auth.RoleAdmin, authorize.ResourceDashboard, authorize.ActionRead)
	if err != nil {
		return fail(c, err, "/")
	}

	d, err := h.svc.Dashboard(c.Context())
	if err != nil {
		return fail(c, err, "/admin")
	}
	return ok(c, d)
}

// GET /admin/doctors
func (h *AdminHandler) Doctors(c fiber.Ctx) error {
	err := h.guard.Authorize(c.Context(), middleware.SessionFromFiber(c), auth.RoleAdmin, authorize.ResourceDoctor, authorize.ActionList)
	if err != nil {
		return fail(c, err, "/")
	}

	list, err := h.svc.ListDoctors(c.Context())
	if err != nil {
		return fail(c, err, "/admin")
	}
	return ok(c, list)
}

// GET /admin/doctors/new
func (h *AdminHandler) NewDoctorForm(c fiber.Ctx) error {
	err := h.guard.Authorize(c.Context(), middleware.SessionFromFiber(c), auth.RoleAdmin, authorize.ResourceDoctor, authorize.ActionCreate)
	if err != nil {
		return fail(c, err, "/")
	}

	deps, err := h.svc.ListDepartments(c.Context())
	if err != nil {
		return fail(c, err, "/admin")
	}
	return ok(c, fiber.Map{"departments": deps})
}

// POST /admin/doctors/new
func (h *AdminHandler) CreateDoctor(c fiber.Ctx) error {
	const back = "/admin/doctors/new"

	err := h.guard.Authorize(c.Context(), middleware.SessionFromFiber(c), auth.RoleAdmin, authorize.ResourceDoctor, authorize.ActionCreate)
	if err != nil {
		return fail(c, err, "/")
	}

	var body struct {
		Username     string `json:"username" form:"username"`
		Password     string `json:"password" form:"password"`
		Name         string `json:"name" form:"name"`
		DepartmentID string `json:"department_id" form:"department_id"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "Invalid request body.", back)
	}

	d, err := h.svc.CreateDoctor(c.Context(), admin.CreateDoctorRequest{
		Username:     body.Username,
		Password:     body.Password,
		Name:         body.Name,
		DepartmentID: body.DepartmentID,
	})
	if err != nil {
		return fail(c, err, back)
	}
	return done(c, fiber.StatusCreated, d, "Doctor created successfully.", "/admin/doctors")
}
