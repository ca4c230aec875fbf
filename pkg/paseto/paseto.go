package pasetotoken

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

type Config struct {
	Issuer   string
	Audience string

	// TTL bounds the cookie token; the session record carries its own TTL.
	TTL time.Duration

	Implicit []byte
}

type Manager struct {
	cfg   Config
	keys  Keys
	parse paseto.Parser
}

func New(cfg Config, keys Keys) (*Manager, error) {
	if keys.Symmetric == nil {
		return nil, ErrConfig{Msg: "missing symmetric key"}
	}
	if cfg.Issuer == "" {
		return nil, ErrConfig{Msg: "Issuer is required"}
	}
	if cfg.Audience == "" {
		return nil, ErrConfig{Msg: "Audience is required"}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	// NewParser already checks expiry against the clock at parse time.
	p := paseto.NewParser()
	p.AddRule(paseto.IssuedBy(cfg.Issuer))
	p.AddRule(paseto.ForAudience(cfg.Audience))

	return &Manager{cfg: cfg, keys: keys, parse: p}, nil
}

// IssueSession returns an encrypted token naming the session id.
func (m *Manager) IssueSession(sessionID uuid.UUID, kind string) (string, error) {
	now := time.Now()

	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(randHex(16))

	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(m.cfg.TTL))

	tok.SetSubject(sessionID.String())
	tok.SetString("sid", sessionID.String())
	tok.SetString("knd", kind)

	return tok.V4Encrypt(*m.keys.Symmetric, m.cfg.Implicit), nil
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	tok, err := m.parse.ParseV4Local(*m.keys.Symmetric, tokenStr, m.cfg.Implicit)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	claims, err := extractClaims(tok, m.cfg.Issuer, m.cfg.Audience)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	if claims.IsExpired() {
		return nil, ErrInvalidToken{Err: ErrExpired}
	}

	return claims, nil
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func extractClaims(tok *paseto.Token, iss, aud string) (*Claims, error) {
	jti, err := tok.GetJti()
	if err != nil {
		return nil, err
	}

	iat, err := tok.GetIssuedAt()
	if err != nil {
		return nil, err
	}

	nbf, err := tok.GetNotBefore()
	if err != nil {
		return nil, err
	}

	exp, err := tok.GetExpiration()
	if err != nil {
		return nil, err
	}

	out := &Claims{
		Issuer:    iss,
		Audience:  aud,
		TokenID:   jti,
		IssuedAt:  iat,
		NotBefore: nbf,
		ExpiresAt: exp,
	}

	sidStr, err := tok.GetString("sid")
	if err != nil {
		return nil, err
	}
	sid, err := uuid.Parse(sidStr)
	if err != nil {
		return nil, err
	}
	out.SessionID = sid

	kind, err := tok.GetString("knd")
	if err != nil {
		return nil, err
	}
	out.Kind = kind

	return out, nil
}
