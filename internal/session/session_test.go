package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pasetotoken "github.com/Alijeyrad/hospital_backend/pkg/paseto"
)

func newManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	tokens, err := pasetotoken.New(pasetotoken.Config{Issuer: "hms", Audience: "hms", TTL: time.Hour}, pasetotoken.NewLocalKeys())
	require.NoError(t, err)
	store := NewMemoryStore()
	return NewManager(store, tokens, time.Hour), store
}

func TestEstablishAndLoad(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	token, s, err := m.Establish(ctx, "", Subject{ID: 1, Kind: KindPatient, IsAdmin: true})
	require.NoError(t, err)

	loaded, err := m.Load(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, 1, loaded.SubjectID)
	assert.Equal(t, KindPatient, loaded.Kind)
	assert.True(t, loaded.IsAdmin)
}

func TestEstablishReplacesOtherRealm(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	patientToken, _, err := m.Establish(ctx, "", Subject{ID: 1, Kind: KindPatient})
	require.NoError(t, err)

	doctorToken, _, err := m.Establish(ctx, patientToken, Subject{ID: 9, Kind: KindDoctor})
	require.NoError(t, err)

	old, err := m.Load(ctx, patientToken)
	require.NoError(t, err)
	assert.Nil(t, old, "patient session must be gone")

	cur, err := m.Load(ctx, doctorToken)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, KindDoctor, cur.Kind)
	assert.False(t, cur.IsAdmin)
	assert.Equal(t, 1, store.Len())
}

func TestLoadAnonymous(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	for _, token := range []string{"", "garbage", "v4.local.AAAA"} {
		s, err := m.Load(ctx, token)
		assert.NoError(t, err)
		assert.Nil(t, s)
	}
}

func TestTeardown(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	token, _, err := m.Establish(ctx, "", Subject{ID: 2, Kind: KindDoctor})
	require.NoError(t, err)

	require.NoError(t, m.Teardown(ctx, token))
	assert.Equal(t, 0, store.Len())

	s, err := m.Load(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, s)

	// Unconditional: tearing down twice or with no token is fine.
	assert.NoError(t, m.Teardown(ctx, token))
	assert.NoError(t, m.Teardown(ctx, ""))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	s := &Session{ID: uuid.New(), SubjectID: 1, Kind: KindPatient}
	require.NoError(t, store.Replace(ctx, nil, s, time.Minute))

	_, err := store.Get(ctx, s.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKey(t *testing.T) {
	id := uuid.MustParse("7f9c1a4e-2b3d-4c5e-8f60-718293a4b5c6")
	assert.Equal(t, "session:7f9c1a4e-2b3d-4c5e-8f60-718293a4b5c6", key(id))
}
