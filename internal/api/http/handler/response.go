package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/service/appointment"
	"github.com/Alijeyrad/hospital_backend/internal/service/auth"
	"github.com/Alijeyrad/hospital_backend/pkg/apperr"
)

// Response bodies:
//
//	view:        {"data": ...}
//	write:       {"data": ..., "notice": "...", "redirect": "/..."}
//	soft error:  {"error": "...", "notice": "...", "redirect": "/..."}
//	hard error:  {"error": "..."}

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

// done reports a successful write and where the client goes next.
func done(c fiber.Ctx, status int, data any, notice, redirect string) error {
	body := fiber.Map{"notice": notice, "redirect": redirect}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// redirect sends the client elsewhere without a notice, e.g. from "/".
func redirect(c fiber.Ctx, to string) error {
	return c.JSON(fiber.Map{"redirect": to})
}

// Sentinels whose redirect does not depend on the page that failed.
var redirectFor = map[error]string{
	auth.ErrLoginRequired:      "/login",
	auth.ErrPatientOnly:        "/login",
	auth.ErrAdminOnly:          "/",
	auth.ErrForbidden:          "/",
	auth.ErrDoctorOnly:         "/doctor/login",
	appointment.ErrNotAssigned: "/doctor",
}

var statusFor = map[apperr.Kind]int{
	apperr.KindValidation:     fiber.StatusBadRequest,
	apperr.KindConflict:       fiber.StatusConflict,
	apperr.KindAuthentication: fiber.StatusUnauthorized,
	apperr.KindAuthorization:  fiber.StatusForbidden,
}

// fail maps a service error to a response. Soft errors send the client back
// to the page that failed (or the sentinel's fixed target) with the message
// as a notice. Not-found stops the request. Anything unclassified is logged
// and hidden.
func fail(c fiber.Ctx, err error, back string) error {
	kind := apperr.KindOf(err)

	if kind == apperr.KindNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": apperr.Message(err)})
	}

	status, soft := statusFor[kind]
	if !soft {
		return internalError(c, err)
	}

	to := back
	for sentinel, target := range redirectFor {
		if errors.Is(err, sentinel) {
			to = target
			break
		}
	}
	msg := apperr.Message(err)
	return c.Status(status).JSON(fiber.Map{"error": kind.String(), "notice": msg, "redirect": to})
}

func badRequest(c fiber.Ctx, msg, back string) error {
	return fail(c, apperr.Validation(msg), back)
}

func internalError(c fiber.Ctx, err error) error {
	slog.ErrorContext(c.Context(), "request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// ErrorHandler renders errors returned past the handlers, from middleware or
// fiber itself, in the same shape as handler errors.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return internalError(c, err)
}
