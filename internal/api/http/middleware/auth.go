package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/internal/session"
	pasetotoken "github.com/Alijeyrad/hospital_backend/pkg/paseto"
	"github.com/Alijeyrad/hospital_backend/pkg/reqctx"
)

const (
	LocalSession      = "session"
	LocalSessionToken = "session_token"
)

// SessionLoader resolves a cookie token; (nil, nil) means anonymous.
type SessionLoader interface {
	Session(ctx context.Context, token string) (*session.Session, error)
}

// LoadSession attaches the caller's session, if any, to the request. It never
// rejects a request: each handler decides what the route demands.
func LoadSession(loader SessionLoader, cookieName string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := pasetotoken.TokenFromRequest(c, cookieName)
		if token == "" {
			return c.Next()
		}
		c.Locals(LocalSessionToken, token)

		s, err := loader.Session(c.Context(), token)
		if err != nil {
			return err
		}
		if s != nil {
			c.Locals(LocalSession, s)
			c.SetContext(reqctx.WithSubject(c.Context(), reqctx.Subject{
				ID:      s.SubjectID,
				Kind:    string(s.Kind),
				IsAdmin: s.IsAdmin,
			}))
		}
		return c.Next()
	}
}

// SessionFromFiber returns the loaded session or nil for anonymous requests.
func SessionFromFiber(c fiber.Ctx) *session.Session {
	s, _ := c.Locals(LocalSession).(*session.Session)
	return s
}

// SessionTokenFromFiber returns the raw token the client presented, valid or not.
func SessionTokenFromFiber(c fiber.Ctx) string {
	t, _ := c.Locals(LocalSessionToken).(string)
	return t
}
