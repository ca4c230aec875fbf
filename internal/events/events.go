// Package events publishes domain events after a transaction commits.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

const DefaultPrefix = "hospital"

type Type string

const (
	AppointmentBooked Type = "appointment.booked"
	TreatmentRecorded Type = "treatment.recorded"
)

// Event is the JSON payload of every published message. ID is the
// appointment the event concerns.
type Event struct {
	Type      Type      `json:"type"`
	ID        int       `json:"id"`
	PatientID int       `json:"patient_id,omitempty"`
	DoctorID  int       `json:"doctor_id,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subject returns "<prefix>.<type>.<id>".
func Subject(prefix string, ev Event) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "." + string(ev.Type) + "." + strconv.Itoa(ev.ID)
}

// ---------------------------------------------------------------------------
// NATS
// ---------------------------------------------------------------------------

type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &NATSPublisher{nc: nc, prefix: prefix}
}

func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := Subject(p.prefix, ev)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	slog.DebugContext(ctx, "event published", "subject", subject)
	return nil
}

// Subscribe delivers every event under prefix to fn. Malformed messages are
// logged and skipped.
func Subscribe(nc *nats.Conn, prefix string, fn func(subject string, ev Event)) (*nats.Subscription, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return nc.Subscribe(prefix+".>", func(msg *nats.Msg) {
		ev, err := Decode(msg.Subject, msg.Data)
		if err != nil {
			slog.Warn("events: dropping malformed message", "subject", msg.Subject, "err", err)
			return
		}
		fn(msg.Subject, ev)
	})
}

// Decode parses a message body. When the body is not JSON the id is taken
// from the last subject token.
func Decode(subject string, data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err == nil && ev.Type != "" {
		return ev, nil
	}

	parts := strings.Split(subject, ".")
	if len(parts) < 4 {
		return Event{}, fmt.Errorf("unexpected subject %q", subject)
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return Event{}, fmt.Errorf("subject id: %w", err)
	}
	return Event{
		Type: Type(strings.Join(parts[1:len(parts)-1], ".")),
		ID:   id,
	}, nil
}

// ---------------------------------------------------------------------------
// No-op
// ---------------------------------------------------------------------------

// Nop drops every event; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
