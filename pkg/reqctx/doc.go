// Package reqctx carries request-scoped data through context.Context.
//
// Middleware stores the request metadata and, for authenticated requests, the
// acting subject. Services and the logger read them back without depending on
// fiber:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: id})
//	ctx = reqctx.WithSubject(ctx, reqctx.Subject{ID: 7, Kind: "doctor"})
//
//	slog.InfoContext(ctx, "booked", reqctx.LogAttrs(ctx)...)
//
// All context keys are private unexported types to prevent collisions.
//
// # Contracts
//
//   - RequestMeta is always set by HTTP middleware for all requests
//   - Subject is set only when the request carries a live session
package reqctx
