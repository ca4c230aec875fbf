package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/hospital_backend/config"
	"github.com/Alijeyrad/hospital_backend/internal/events"
	"github.com/Alijeyrad/hospital_backend/internal/repo/repotest"
)

func TestAuditHandlerLogsEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := AuditHandler(logger, nil)
	h("hospital.treatment.recorded.7", events.Event{
		Type:      events.TreatmentRecorded,
		ID:        7,
		PatientID: 2,
		DoctorID:  3,
		At:        time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "audit_worker: event", rec["msg"])
	assert.Equal(t, "hospital.treatment.recorded.7", rec["subject"])
	assert.Equal(t, "treatment.recorded", rec["type"])
	assert.EqualValues(t, 7, rec["appointment_id"])
	assert.EqualValues(t, 2, rec["patient_id"])
	assert.EqualValues(t, 3, rec["doctor_id"])
}

func TestAuditHandlerOmitsUnknownParties(t *testing.T) {
	var buf bytes.Buffer
	h := AuditHandler(slog.New(slog.NewJSONHandler(&buf, nil)), nil)
	h("hospital.appointment.booked.1", events.Event{Type: events.AppointmentBooked, ID: 1})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, rec, "patient_id")
	assert.NotContains(t, rec, "doctor_id")
	assert.NotContains(t, rec, "at")
}

func TestProvidePublisherWithoutBroker(t *testing.T) {
	pub := ProvidePublisher(nil, &config.Config{})
	assert.IsType(t, events.Nop{}, pub)
}

func TestProvideAppointmentServiceTimezone(t *testing.T) {
	cfg := &config.Config{}

	cfg.Server.Timezone = "UTC"
	svc, err := ProvideAppointmentService(repotest.New(), events.Nop{}, cfg)
	require.NoError(t, err)
	assert.NotNil(t, svc)

	cfg.Server.Timezone = "Mars/Olympus_Mons"
	_, err = ProvideAppointmentService(repotest.New(), events.Nop{}, cfg)
	assert.Error(t, err)
}

func TestAdminFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Bootstrap.AdminUsername = "admin"
	cfg.Bootstrap.AdminPassword = "secret"
	cfg.Bootstrap.AdminName = "Admin"

	b := AdminFromConfig(cfg)
	assert.Equal(t, "admin", b.Username)
	assert.Equal(t, "secret", b.Password)
	assert.Equal(t, "Admin", b.Name)
}
