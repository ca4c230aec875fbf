package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		ev     Event
		want   string
	}{
		{"booked", "hospital", Event{Type: AppointmentBooked, ID: 7}, "hospital.appointment.booked.7"},
		{"recorded", "hospital", Event{Type: TreatmentRecorded, ID: 12}, "hospital.treatment.recorded.12"},
		{"default prefix", "", Event{Type: AppointmentBooked, ID: 1}, "hospital.appointment.booked.1"},
		{"custom prefix", "staging", Event{Type: TreatmentRecorded, ID: 3}, "staging.treatment.recorded.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subject(tt.prefix, tt.ev))
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		ev, err := Decode("hospital.appointment.booked.4",
			[]byte(`{"type":"appointment.booked","id":4,"patient_id":2,"doctor_id":9}`))
		require.NoError(t, err)
		assert.Equal(t, AppointmentBooked, ev.Type)
		assert.Equal(t, 4, ev.ID)
		assert.Equal(t, 2, ev.PatientID)
		assert.Equal(t, 9, ev.DoctorID)
	})

	t.Run("falls back to subject", func(t *testing.T) {
		ev, err := Decode("hospital.treatment.recorded.15", []byte("15"))
		require.NoError(t, err)
		assert.Equal(t, TreatmentRecorded, ev.Type)
		assert.Equal(t, 15, ev.ID)
	})

	t.Run("bad subject", func(t *testing.T) {
		_, err := Decode("hospital.x", nil)
		assert.Error(t, err)
	})

	t.Run("non numeric id", func(t *testing.T) {
		_, err := Decode("hospital.appointment.booked.abc", nil)
		assert.Error(t, err)
	})
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: AppointmentBooked, ID: 1}))
}
