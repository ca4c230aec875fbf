package pasetotoken

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := New(Config{Issuer: "hms", Audience: "hms", TTL: ttl}, NewLocalKeys())
	require.NoError(t, err)
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t, time.Hour)
	sid := uuid.New()

	tok, err := m.IssueSession(sid, "doctor")
	require.NoError(t, err)
	assert.Contains(t, tok, "v4.local.")

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, sid, claims.SessionID)
	assert.Equal(t, "doctor", claims.Kind)
	assert.False(t, claims.IsExpired())
}

func TestVerifyRejects(t *testing.T) {
	m := newTestManager(t, time.Hour)
	tok, err := m.IssueSession(uuid.New(), "patient")
	require.NoError(t, err)

	other := newTestManager(t, time.Hour)

	tests := []struct {
		name  string
		m     *Manager
		token string
	}{
		{"garbage", m, "not-a-token"},
		{"wrong key", other, tok},
		{"tampered", m, tok[:len(tok)-2] + "AA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.Verify(tt.token)
			var invalid ErrInvalidToken
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t, time.Nanosecond)
	tok, err := m.IssueSession(uuid.New(), "patient")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = m.Verify(tok)
	assert.Error(t, err)
}

func TestLoadKeys(t *testing.T) {
	_, err := LoadKeys("")
	assert.Error(t, err)

	_, err = LoadKeys("zz")
	assert.Error(t, err)

	k, err := LoadKeys("707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f")
	require.NoError(t, err)
	assert.NotNil(t, k.Symmetric)
}
