package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/hospital_backend/config"
	"github.com/Alijeyrad/hospital_backend/internal/api/http/router"
	"github.com/Alijeyrad/hospital_backend/internal/events"
	"github.com/Alijeyrad/hospital_backend/internal/repo"
	"github.com/Alijeyrad/hospital_backend/internal/repo/repotest"
	"github.com/Alijeyrad/hospital_backend/internal/service/admin"
	"github.com/Alijeyrad/hospital_backend/internal/service/appointment"
	"github.com/Alijeyrad/hospital_backend/internal/service/auth"
	"github.com/Alijeyrad/hospital_backend/internal/session"
	"github.com/Alijeyrad/hospital_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/hospital_backend/pkg/paseto"
	"github.com/Alijeyrad/hospital_backend/pkg/util/password"
)

const cookieName = "hms_session"

func TestMain(m *testing.M) {
	if err := password.Configure(password.LowMemoryConfig()); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testServer struct {
	app   *fiber.App
	store *repotest.Store
	admin admin.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.Server.Environment = "development"
	cfg.Authentication.CookieName = cookieName
	cfg.Authentication.SessionTTLMinutes = 60

	tokens, err := pasetotoken.New(pasetotoken.Config{Issuer: "hms", Audience: "hms"}, pasetotoken.NewLocalKeys())
	require.NoError(t, err)

	enforcer, cleanup, err := authorize.NewEnforcer(ctx, authorize.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { cleanup(ctx) })
	authz, err := authorize.NewAuthorization(enforcer)
	require.NoError(t, err)
	require.NoError(t, authorize.SeedDefaultPolicies(ctx, authz))

	store := repotest.New()
	adminSvc := admin.New(store)
	_, err = adminSvc.EnsureAdmin(ctx, admin.BootstrapAdmin{Username: "admin", Password: "admin", Name: "Admin"})
	require.NoError(t, err)

	r := router.NewRouter(router.Params{
		Cfg:            cfg,
		Guard:          auth.NewGuard(authz),
		AuthSvc:        auth.New(store, session.NewManager(session.NewMemoryStore(), tokens, time.Hour)),
		AdminSvc:       adminSvc,
		AppointmentSvc: appointment.New(store, events.Nop{}, time.UTC),
	})
	app := NewApp(cfg, false)
	r.Register(app)

	return &testServer{app: app, store: store, admin: adminSvc}
}

type reply struct {
	Status   int             `json:"-"`
	Cookie   *nethttp.Cookie `json:"-"`
	Data     json.RawMessage `json:"data"`
	Error    string          `json:"error"`
	Notice   string          `json:"notice"`
	Redirect string          `json:"redirect"`
}

// do sends a form request, carrying cookie when non-empty.
func (s *testServer) do(t *testing.T, method, path string, form url.Values, cookie string) reply {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != "" {
		req.AddCookie(&nethttp.Cookie{Name: cookieName, Value: cookie})
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var r reply
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &r), string(raw))
	}
	r.Status = resp.StatusCode
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			r.Cookie = c
		}
	}
	return r
}

func (s *testServer) login(t *testing.T, path, username, password string) string {
	t.Helper()
	r := s.do(t, fiber.MethodPost, path, url.Values{"username": {username}, "password": {password}}, "")
	require.Equal(t, fiber.StatusOK, r.Status, r.Notice)
	require.NotNil(t, r.Cookie)
	return r.Cookie.Value
}

func (s *testServer) addDoctor(t *testing.T, username, password string) *repo.Doctor {
	t.Helper()
	d, err := s.admin.CreateDoctor(context.Background(), admin.CreateDoctorRequest{
		Username: username, Password: password, Name: "Dr. " + username,
	})
	require.NoError(t, err)
	return d
}

func TestEndToEndScenario(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	doc := s.addDoctor(t, "house", "vicodin")

	r := s.do(t, fiber.MethodPost, "/register", url.Values{
		"username": {"alice"}, "password": {"pw1"}, "name": {"Alice"},
	}, "")
	require.Equal(t, fiber.StatusCreated, r.Status)
	assert.Equal(t, "/login", r.Redirect)
	assert.Nil(t, r.Cookie, "registration does not log in")

	r = s.do(t, fiber.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"pw1"}}, "")
	require.Equal(t, fiber.StatusOK, r.Status)
	assert.Equal(t, "/patient", r.Redirect)
	require.NotNil(t, r.Cookie)
	assert.True(t, r.Cookie.HttpOnly)
	assert.Equal(t, nethttp.SameSiteLaxMode, r.Cookie.SameSite)
	alice := r.Cookie.Value

	r = s.do(t, fiber.MethodPost, "/patient/appointments/new", url.Values{
		"doctor_id": {strconv.Itoa(doc.ID)}, "date": {"2025-12-01"}, "time": {"09:00"},
	}, alice)
	require.Equal(t, fiber.StatusCreated, r.Status, r.Notice)
	assert.Equal(t, "/patient", r.Redirect)
	assert.Equal(t, "Appointment booked!", r.Notice)

	var appt repo.Appointment
	require.NoError(t, json.Unmarshal(r.Data, &appt))
	assert.Equal(t, repo.StatusPending, appt.Status)

	house := s.login(t, "/doctor/login", "house", "vicodin")

	path := "/doctor/appointments/" + strconv.Itoa(appt.ID)
	r = s.do(t, fiber.MethodPost, path, url.Values{"diagnosis": {"flu"}, "prescription": {"rest"}}, house)
	require.Equal(t, fiber.StatusOK, r.Status, r.Notice)
	assert.Equal(t, "/doctor", r.Redirect)

	got, err := s.store.AppointmentByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.StatusCompleted, got.Status)
	tr, err := s.store.TreatmentByAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "flu", tr.Diagnosis)

	r = s.do(t, fiber.MethodGet, path, nil, house)
	require.Equal(t, fiber.StatusOK, r.Status)
	var detail appointment.Detail
	require.NoError(t, json.Unmarshal(r.Data, &detail))
	require.NotNil(t, detail.Treatment)
	assert.Equal(t, "rest", detail.Treatment.Prescription)
}

func TestIndexDispatch(t *testing.T) {
	s := newTestServer(t)
	s.addDoctor(t, "house", "pw")
	_, err := auth.New(s.store, nil).Register(context.Background(), auth.RegisterRequest{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	r := s.do(t, fiber.MethodGet, "/", nil, "")
	assert.Equal(t, fiber.StatusOK, r.Status)
	assert.Empty(t, r.Redirect)

	tests := []struct {
		name, loginPath, username, password, want string
	}{
		{"admin", "/login", "admin", "admin", "/admin"},
		{"patient", "/login", "bob", "pw", "/patient"},
		{"doctor", "/doctor/login", "house", "pw", "/doctor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cookie := s.login(t, tt.loginPath, tt.username, tt.password)
			r := s.do(t, fiber.MethodGet, "/", nil, cookie)
			assert.Equal(t, tt.want, r.Redirect)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.addDoctor(t, "house", "pw")

	tests := []struct {
		name       string
		path       string
		form       url.Values
		wantStatus int
		wantNotice string
		wantTo     string
	}{
		{"empty", "/login", url.Values{"username": {"admin"}}, fiber.StatusBadRequest, "Username or password cannot be empty.", "/login"},
		{"unknown user", "/login", url.Values{"username": {"nobody"}, "password": {"x"}}, fiber.StatusUnauthorized, "User does not exist.", "/login"},
		{"bad password", "/login", url.Values{"username": {"admin"}, "password": {"x"}}, fiber.StatusUnauthorized, "Incorrect password.", "/login"},
		{"doctor in patient realm", "/login", url.Values{"username": {"house"}, "password": {"pw"}}, fiber.StatusUnauthorized, "User does not exist.", "/login"},
		{"patient in doctor realm", "/doctor/login", url.Values{"username": {"admin"}, "password": {"admin"}}, fiber.StatusUnauthorized, "Doctor does not exist.", "/doctor/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := s.do(t, fiber.MethodPost, tt.path, tt.form, "")
			assert.Equal(t, tt.wantStatus, r.Status)
			assert.Equal(t, tt.wantNotice, r.Notice)
			assert.Equal(t, tt.wantTo, r.Redirect)
			assert.Nil(t, r.Cookie)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{"username": {"alice"}, "password": {"pw"}}

	require.Equal(t, fiber.StatusCreated, s.do(t, fiber.MethodPost, "/register", form, "").Status)

	r := s.do(t, fiber.MethodPost, "/register", form, "")
	assert.Equal(t, fiber.StatusConflict, r.Status)
	assert.Equal(t, "Patient with this username already exists.", r.Notice)
	assert.Equal(t, "/register", r.Redirect)

	n, err := s.store.CountPatients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "admin plus alice")
}

func TestRouteGuards(t *testing.T) {
	s := newTestServer(t)
	s.addDoctor(t, "house", "pw")
	_, err := auth.New(s.store, nil).Register(context.Background(), auth.RegisterRequest{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	bob := s.login(t, "/login", "bob", "pw")
	house := s.login(t, "/doctor/login", "house", "pw")
	root := s.login(t, "/login", "admin", "admin")

	tests := []struct {
		name       string
		method     string
		path       string
		cookie     string
		wantStatus int
		wantTo     string
	}{
		{"anonymous admin", fiber.MethodGet, "/admin", "", fiber.StatusForbidden, "/"},
		{"patient admin", fiber.MethodGet, "/admin/doctors", bob, fiber.StatusForbidden, "/"},
		{"doctor admin", fiber.MethodGet, "/admin", house, fiber.StatusForbidden, "/"},
		{"anonymous patient", fiber.MethodGet, "/patient", "", fiber.StatusUnauthorized, "/login"},
		{"doctor patient", fiber.MethodGet, "/patient", house, fiber.StatusForbidden, "/login"},
		{"anonymous doctor", fiber.MethodGet, "/doctor", "", fiber.StatusForbidden, "/doctor/login"},
		{"anonymous appointment", fiber.MethodGet, "/doctor/appointments/1", "", fiber.StatusForbidden, "/doctor/login"},
		{"anonymous treatment", fiber.MethodPost, "/doctor/appointments/1", "", fiber.StatusForbidden, "/doctor/login"},
		{"patient doctor", fiber.MethodGet, "/doctor", bob, fiber.StatusForbidden, "/doctor/login"},
		{"bogus cookie", fiber.MethodGet, "/patient", "v4.local.garbage", fiber.StatusUnauthorized, "/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := s.do(t, tt.method, tt.path, nil, tt.cookie)
			assert.Equal(t, tt.wantStatus, r.Status)
			assert.Equal(t, tt.wantTo, r.Redirect)
			assert.NotEmpty(t, r.Notice)
		})
	}

	for _, path := range []string{"/admin", "/admin/doctors", "/admin/doctors/new", "/patient"} {
		r := s.do(t, fiber.MethodGet, path, nil, root)
		assert.Equal(t, fiber.StatusOK, r.Status, path)
	}
}

func TestAdminCreatesDoctor(t *testing.T) {
	s := newTestServer(t)
	root := s.login(t, "/login", "admin", "admin")

	r := s.do(t, fiber.MethodPost, "/admin/doctors/new", url.Values{
		"username": {"house"}, "password": {"pw"}, "name": {"Dr. House"},
	}, root)
	require.Equal(t, fiber.StatusCreated, r.Status, r.Notice)
	assert.Equal(t, "/admin/doctors", r.Redirect)

	r = s.do(t, fiber.MethodPost, "/admin/doctors/new", url.Values{
		"username": {"house"}, "password": {"pw"},
	}, root)
	assert.Equal(t, fiber.StatusConflict, r.Status)
	assert.Equal(t, "/admin/doctors/new", r.Redirect)

	r = s.do(t, fiber.MethodPost, "/admin/doctors/new", url.Values{
		"username": {"wilson"}, "password": {"pw"}, "department_id": {"42"},
	}, root)
	assert.Equal(t, fiber.StatusBadRequest, r.Status)
	assert.Equal(t, "Department does not exist.", r.Notice)

	r = s.do(t, fiber.MethodGet, "/admin", nil, root)
	require.Equal(t, fiber.StatusOK, r.Status)
	var d admin.Dashboard
	require.NoError(t, json.Unmarshal(r.Data, &d))
	assert.Equal(t, admin.Dashboard{TotalPatients: 1, TotalDoctors: 1}, d)
}

func TestBookingInvalidDate(t *testing.T) {
	s := newTestServer(t)
	doc := s.addDoctor(t, "house", "pw")
	root := s.login(t, "/login", "admin", "admin")

	r := s.do(t, fiber.MethodPost, "/patient/appointments/new", url.Values{
		"doctor_id": {strconv.Itoa(doc.ID)}, "date": {"2025-13-40"}, "time": {"09:00"},
	}, root)
	assert.Equal(t, fiber.StatusBadRequest, r.Status)
	assert.Equal(t, "/patient/appointments/new", r.Redirect)

	n, err := s.store.CountAppointments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTreatmentByOtherDoctor(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	house := s.addDoctor(t, "house", "pw")
	s.addDoctor(t, "wilson", "pw")

	owner, err := s.store.PatientByUsername(ctx, "admin")
	require.NoError(t, err)
	appt := &repo.Appointment{PatientID: owner.ID, DoctorID: house.ID, ScheduledAt: time.Now()}
	require.NoError(t, s.store.CreateAppointment(ctx, appt))

	wilson := s.login(t, "/doctor/login", "wilson", "pw")
	path := "/doctor/appointments/" + strconv.Itoa(appt.ID)

	r := s.do(t, fiber.MethodPost, path, url.Values{"diagnosis": {"x"}, "prescription": {"y"}}, wilson)
	assert.Equal(t, fiber.StatusForbidden, r.Status)
	assert.Equal(t, "You are not assigned to this appointment.", r.Notice)
	assert.Equal(t, "/doctor", r.Redirect)
	assert.Empty(t, s.store.Treatments(appt.ID))

	r = s.do(t, fiber.MethodGet, "/doctor/appointments/9999", nil, wilson)
	assert.Equal(t, fiber.StatusNotFound, r.Status)
	assert.Empty(t, r.Redirect)
	assert.Equal(t, "Appointment not found.", r.Error)

	r = s.do(t, fiber.MethodGet, "/doctor/appointments/abc", nil, wilson)
	assert.Equal(t, fiber.StatusNotFound, r.Status)
}

func TestRealmSwitchAndLogout(t *testing.T) {
	s := newTestServer(t)
	s.addDoctor(t, "house", "pw")

	root := s.login(t, "/login", "admin", "admin")

	// Logging in as a doctor with the admin cookie discards the admin session.
	r := s.do(t, fiber.MethodPost, "/doctor/login", url.Values{"username": {"house"}, "password": {"pw"}}, root)
	require.Equal(t, fiber.StatusOK, r.Status)
	house := r.Cookie.Value

	assert.Equal(t, fiber.StatusForbidden, s.do(t, fiber.MethodGet, "/admin", nil, root).Status)
	assert.Equal(t, fiber.StatusOK, s.do(t, fiber.MethodGet, "/doctor", nil, house).Status)

	r = s.do(t, fiber.MethodGet, "/logout", nil, house)
	assert.Equal(t, fiber.StatusOK, r.Status)
	assert.Equal(t, "/login", r.Redirect)
	require.NotNil(t, r.Cookie)
	assert.Empty(t, r.Cookie.Value)

	r = s.do(t, fiber.MethodGet, "/doctor", nil, house)
	assert.Equal(t, fiber.StatusForbidden, r.Status)
	assert.Equal(t, "/doctor/login", r.Redirect)
	assert.Equal(t, "Doctor access only. Please login as doctor.", r.Notice)
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/livez", "/readyz", "/startupz"} {
		resp, err := s.app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}
