// Package session keeps server-side login state. The browser only holds a
// PASETO token naming the session id; the record itself lives in a Store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	pasetotoken "github.com/Alijeyrad/hospital_backend/pkg/paseto"
)

type Kind string

const (
	KindPatient Kind = "patient"
	KindDoctor  Kind = "doctor"
)

var ErrNotFound = errors.New("session not found")

// Session is the stored record for one logged-in subject.
type Session struct {
	ID        uuid.UUID `json:"-"`
	SubjectID int       `json:"subject_id"`
	Kind      Kind      `json:"kind"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Subject is what a successful login hands to Establish.
type Subject struct {
	ID      int
	Kind    Kind
	IsAdmin bool
}

// Store persists session records with a TTL.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	// Replace deletes prev (when non-nil) and writes s as one atomic step.
	Replace(ctx context.Context, prev *uuid.UUID, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Manager struct {
	store  Store
	tokens *pasetotoken.Manager
	ttl    time.Duration
}

func NewManager(store Store, tokens *pasetotoken.Manager, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: store, tokens: tokens, ttl: ttl}
}

// TTL is the lifetime of new sessions; the cookie uses the same value.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Establish discards whatever session prevToken names, whichever realm it
// belongs to, and starts a new one for subj. It returns the cookie token.
func (m *Manager) Establish(ctx context.Context, prevToken string, subj Subject) (string, *Session, error) {
	s := &Session{
		ID:        uuid.New(),
		SubjectID: subj.ID,
		Kind:      subj.Kind,
		IsAdmin:   subj.IsAdmin,
		CreatedAt: time.Now().UTC(),
	}

	var prev *uuid.UUID
	if prevToken != "" {
		if claims, err := m.tokens.Verify(prevToken); err == nil {
			prev = &claims.SessionID
		}
	}

	if err := m.store.Replace(ctx, prev, s, m.ttl); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}

	token, err := m.tokens.IssueSession(s.ID, string(s.Kind))
	if err != nil {
		return "", nil, fmt.Errorf("issue session token: %w", err)
	}
	return token, s, nil
}

// Load resolves a cookie token to its session. A missing, invalid or expired
// token yields (nil, nil): the request is simply anonymous.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		slog.DebugContext(ctx, "session token rejected", "error", err)
		return nil, nil
	}

	s, err := m.store.Get(ctx, claims.SessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if string(s.Kind) != claims.Kind {
		return nil, nil
	}
	return s, nil
}

// Teardown deletes the session named by token. Clearing the cookie is up to the caller.
func (m *Manager) Teardown(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := m.tokens.Verify(token)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
