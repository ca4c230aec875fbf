package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the app-facing session token payload.
type Claims struct {
	SessionID uuid.UUID
	// Kind is the realm the session was established in ("patient" or "doctor").
	Kind string

	Issuer   string
	Audience string

	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	TokenID   string // jti
}

func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
