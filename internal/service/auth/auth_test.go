package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/hospital_backend/internal/repo"
	"github.com/Alijeyrad/hospital_backend/internal/repo/repotest"
	"github.com/Alijeyrad/hospital_backend/internal/session"
	"github.com/Alijeyrad/hospital_backend/pkg/apperr"
	pasetotoken "github.com/Alijeyrad/hospital_backend/pkg/paseto"
	"github.com/Alijeyrad/hospital_backend/pkg/util/password"
)

func newTestService(t *testing.T) (Service, *repotest.Store) {
	t.Helper()
	tokens, err := pasetotoken.New(pasetotoken.Config{Issuer: "hms", Audience: "hms"}, pasetotoken.NewLocalKeys())
	require.NoError(t, err)
	store := repotest.New()
	return New(store, session.NewManager(session.NewMemoryStore(), tokens, time.Hour)), store
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"empty username", RegisterRequest{Password: "pw"}, ErrMissingCredentials},
		{"empty password", RegisterRequest{Username: "bob"}, ErrMissingCredentials},
		{"username too long", RegisterRequest{Username: strings.Repeat("u", 33), Password: "pw"}, ErrUsernameTooLong},
		{"name too long", RegisterRequest{Username: "bob", Password: "pw", Name: strings.Repeat("n", 65)}, ErrNameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			_, err := svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

			n, _ := store.CountPatients(ctx)
			assert.Zero(t, n)
		})
	}
}

func TestRegisterTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	for _, username := range []string{"alice", "a", strings.Repeat("z", 32)} {
		p, err := svc.Register(ctx, RegisterRequest{Username: username, Password: "pw1", Name: "Alice"})
		require.NoError(t, err)
		assert.False(t, p.IsAdmin)

		_, err = svc.Register(ctx, RegisterRequest{Username: username, Password: "other"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	}

	n, err := store.CountPatients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRegisterDoesNotStorePlaintext(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	p, err := store.PatientByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", p.PassHash())
	assert.True(t, p.VerifyCredential("pw1"))
	assert.False(t, p.VerifyCredential("pw2"))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	admin := &repo.Patient{Username: "admin", IsAdmin: true}
	require.NoError(t, admin.SetCredential("admin"))
	require.NoError(t, store.CreatePatient(ctx, admin))

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "ghost", Password: "x"})
		assert.ErrorIs(t, err, ErrPatientNotFound)
		assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("empty fields", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "alice"})
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("patient lands on patient dashboard", func(t *testing.T) {
		res, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "pw1"})
		require.NoError(t, err)
		assert.Equal(t, "/patient", res.Redirect)
		assert.Equal(t, session.KindPatient, res.Session.Kind)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("admin lands on admin dashboard", func(t *testing.T) {
		res, err := svc.Login(ctx, LoginRequest{Username: "admin", Password: "admin"})
		require.NoError(t, err)
		assert.Equal(t, "/admin", res.Redirect)
		assert.True(t, res.Session.IsAdmin)
	})

	t.Run("doctor realm is separate", func(t *testing.T) {
		_, err := svc.LoginDoctor(ctx, LoginRequest{Username: "alice", Password: "pw1"})
		assert.ErrorIs(t, err, ErrDoctorNotFound)
	})
}

func TestLoginSwitchesRealm(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	doc := &repo.Doctor{Username: "house"}
	require.NoError(t, doc.SetCredential("vicodin"))
	require.NoError(t, store.CreateDoctor(ctx, doc))

	patient, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	doctor, err := svc.LoginDoctor(ctx, LoginRequest{Username: "house", Password: "vicodin", PrevToken: patient.Token})
	require.NoError(t, err)
	assert.Equal(t, "/doctor", doctor.Redirect)

	old, err := svc.Session(ctx, patient.Token)
	require.NoError(t, err)
	assert.Nil(t, old)

	cur, err := svc.Session(ctx, doctor.Token)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, doc.ID, cur.SubjectID)
	assert.Equal(t, session.KindDoctor, cur.Kind)
	assert.False(t, cur.IsAdmin)

	require.NoError(t, svc.Logout(ctx, doctor.Token))
	gone, err := svc.Session(ctx, doctor.Token)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

// useHashParams switches the argon2id parameters for one test and restores the
// defaults afterwards.
func useHashParams(t *testing.T, iterations uint32) {
	t.Helper()
	require.NoError(t, password.Configure(password.Config{MemoryKiB: 8 * 1024, Iterations: iterations, Parallelism: 1}))
	t.Cleanup(func() {
		require.NoError(t, password.Configure(password.Config{MemoryKiB: 64 * 1024, Iterations: 3, Parallelism: 2}))
	})
}

func TestLoginUpgradesStaleHash(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	useHashParams(t, 1)
	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	doc := &repo.Doctor{Username: "house"}
	require.NoError(t, doc.SetCredential("vicodin"))
	require.NoError(t, store.CreateDoctor(ctx, doc))

	useHashParams(t, 2)

	_, err = svc.Login(ctx, LoginRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	p, err := store.PatientByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, p.PassHash(), "t=2")
	assert.False(t, p.CredentialStale())
	assert.True(t, p.VerifyCredential("pw1"))

	_, err = svc.LoginDoctor(ctx, LoginRequest{Username: "house", Password: "vicodin"})
	require.NoError(t, err)
	d, err := store.DoctorByUsername(ctx, "house")
	require.NoError(t, err)
	assert.Contains(t, d.PassHash(), "t=2")
	assert.True(t, d.VerifyCredential("vicodin"))
}

func TestLoginKeepsCurrentHash(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	useHashParams(t, 1)

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	before, err := store.PatientByUsername(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	after, err := store.PatientByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, before.PassHash(), after.PassHash())

	// A failed login never rewrites the hash.
	useHashParams(t, 2)
	_, err = svc.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredential)
	after, err = store.PatientByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, before.PassHash(), after.PassHash())
}
