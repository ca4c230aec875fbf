package pasetotoken

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/hospital_backend/config"
)

// TokenFromRequest returns the session token from the named cookie, falling
// back to an "Authorization: Bearer" header for non-browser clients.
func TokenFromRequest(c fiber.Ctx, cookieName string) string {
	if v := c.Cookies(cookieName); v != "" {
		return v
	}
	h := c.Get(fiber.HeaderAuthorization)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// NewPasetoManager creates a new PASETO manager from config.
// Without a configured key a random one is generated, so tokens do not
// survive a restart.
func NewPasetoManager(cfg *config.Config) (*Manager, error) {
	p := cfg.Authentication.Paseto

	var keys Keys
	if p.LocalKeyHex == "" {
		slog.Warn("authentication.paseto.local_key_hex not set, using an ephemeral key")
		keys = NewLocalKeys()
	} else {
		var err error
		if keys, err = LoadKeys(p.LocalKeyHex); err != nil {
			return nil, err
		}
	}

	return New(Config{
		Issuer:   p.Issuer,
		Audience: p.Audience,
		TTL:      time.Duration(cfg.Authentication.SessionTTLMinutes) * time.Minute,
	}, keys)
}
