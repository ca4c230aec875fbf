package reqctx

import (
	"context"
	"log/slog"
)

// Subject identifies who is acting on a request.
type Subject struct {
	ID      int
	Kind    string // "patient" or "doctor"
	IsAdmin bool
}

func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, keySubject, s)
}

// SubjectFromContext returns the acting subject, if any.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(keySubject).(Subject)
	return s, ok
}

// LogAttrs returns slog key/value pairs for the request id and subject.
func LogAttrs(ctx context.Context) []any {
	var attrs []any
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if s, ok := SubjectFromContext(ctx); ok {
		attrs = append(attrs, slog.Group("subject",
			slog.Int("id", s.ID),
			slog.String("kind", s.Kind),
			slog.Bool("admin", s.IsAdmin),
		))
	}
	return attrs
}
