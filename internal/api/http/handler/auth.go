package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/hospital_backend/internal/service/auth"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	svc    auth.Service
	cookie CookieConfig
}

func NewAuthHandler(svc auth.Service, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

type credentialsBody struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// GET /
func (h *AuthHandler) Index(c fiber.Ctx) error {
	if s := middleware.SessionFromFiber(c); s != nil {
		return redirect(c, auth.DashboardFor(s))
	}
	return ok(c, fiber.Map{"view": "index"})
}

// GET /login
func (h *AuthHandler) LoginForm(c fiber.Ctx) error {
	return ok(c, fiber.Map{"view": "login"})
}

// POST /login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body credentialsBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "Invalid request body.", "/login")
	}

	res, err := h.svc.Login(c.Context(), auth.LoginRequest{
		Username:  body.Username,
		Password:  body.Password,
		PrevToken: middleware.SessionTokenFromFiber(c),
	})
	if err != nil {
		return fail(c, err, "/login")
	}

	h.setCookie(c, res.Token)
	return done(c, fiber.StatusOK, fiber.Map{
		"subject_id": res.Session.SubjectID,
		"kind":       res.Session.Kind,
		"is_admin":   res.Session.IsAdmin,
	}, "Logged in.", res.Redirect)
}

// GET /doctor/login
func (h *AuthHandler) DoctorLoginForm(c fiber.Ctx) error {
	return ok(c, fiber.Map{"view": "doctor_login"})
}

// POST /doctor/login
func (h *AuthHandler) DoctorLogin(c fiber.Ctx) error {
	var body credentialsBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "Invalid request body.", "/doctor/login")
	}

	res, err := h.svc.LoginDoctor(c.Context(), auth.LoginRequest{
		Username:  body.Username,
		Password:  body.Password,
		PrevToken: middleware.SessionTokenFromFiber(c),
	})
	if err != nil {
		return fail(c, err, "/doctor/login")
	}

	h.setCookie(c, res.Token)
	return done(c, fiber.StatusOK, fiber.Map{
		"subject_id": res.Session.SubjectID,
		"kind":       res.Session.Kind,
	}, "Logged in.", res.Redirect)
}

// GET /logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if err := h.svc.Logout(c.Context(), middleware.SessionTokenFromFiber(c)); err != nil {
		return internalError(c, err)
	}
	h.clearCookie(c)
	return done(c, fiber.StatusOK, nil, "Logged out.", "/login")
}

// GET /register
func (h *AuthHandler) RegisterForm(c fiber.Ctx) error {
	return ok(c, fiber.Map{"view": "register"})
}

// POST /register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var body struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
		Name     string `json:"name" form:"name"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "Invalid request body.", "/register")
	}

	p, err := h.svc.Register(c.Context(), auth.RegisterRequest{
		Username: body.Username,
		Password: body.Password,
		Name:     body.Name,
	})
	if err != nil {
		return fail(c, err, "/register")
	}

	return done(c, fiber.StatusCreated, p, "User successfully registered! Please login.", "/login")
}

func (h *AuthHandler) setCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
