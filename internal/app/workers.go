package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/hospital_backend/config"
	"github.com/Alijeyrad/hospital_backend/internal/events"
	"github.com/Alijeyrad/hospital_backend/pkg/observability"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg *config.Config
	NC  *nats.Conn `optional:"true"`
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		return
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			metrics, err := observability.NewDomainMetrics()
			if err != nil {
				return err
			}
			sub, err = events.Subscribe(p.NC, p.Cfg.Nats.Subject, AuditHandler(slog.Default(), metrics))
			if err != nil {
				return err
			}
			slog.Info("audit_worker: started", "subject", sub.Subject)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain of the connection is handled by ProvideNatsClient
			if sub == nil {
				return nil
			}
			return sub.Unsubscribe()
		},
	})
}

// ---------------------------------------------------------------------------
// audit_worker
// ---------------------------------------------------------------------------

// AuditHandler writes one log line per domain event and counts it.
func AuditHandler(logger *slog.Logger, metrics *observability.DomainMetrics) func(string, events.Event) {
	return func(subject string, ev events.Event) {
		ctx := context.Background()
		metrics.Event(ctx, string(ev.Type))

		attrs := []any{
			"subject", subject,
			"type", ev.Type,
			"appointment_id", ev.ID,
		}
		if ev.PatientID != 0 {
			attrs = append(attrs, "patient_id", ev.PatientID)
		}
		if ev.DoctorID != 0 {
			attrs = append(attrs, "doctor_id", ev.DoctorID)
		}
		if !ev.At.IsZero() {
			attrs = append(attrs, "at", ev.At)
		}
		logger.InfoContext(ctx, "audit_worker: event", attrs...)
	}
}
