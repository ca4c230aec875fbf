package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/hospital_backend/config"
	"github.com/Alijeyrad/hospital_backend/internal/api/http/handler"
	"github.com/Alijeyrad/hospital_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/hospital_backend/internal/repo"
	"github.com/Alijeyrad/hospital_backend/internal/service/admin"
	"github.com/Alijeyrad/hospital_backend/internal/service/appointment"
	"github.com/Alijeyrad/hospital_backend/internal/service/auth"
	"github.com/Alijeyrad/hospital_backend/pkg/authorize"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg            *config.Config
	Redis          *redis.Client `optional:"true"`
	DB             *repo.Client  `optional:"true"`
	Guard          *auth.Guard
	AuthSvc        auth.Service
	AdminSvc       admin.Service
	AppointmentSvc appointment.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Every other route sees the caller's session, if any
	app.Use(middleware.LoadSession(r.p.AuthSvc, r.p.Cfg.Authentication.CookieName))

	// 3. Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc, handler.CookieConfig{
		Name:   r.p.Cfg.Authentication.CookieName,
		TTL:    time.Duration(r.p.Cfg.Authentication.SessionTTLMinutes) * time.Minute,
		Secure: r.p.Cfg.IsProduction(),
	})
	adminH := handler.NewAdminHandler(r.p.AdminSvc, r.p.Guard)
	patientH := handler.NewPatientHandler(r.p.AppointmentSvc, r.p.AdminSvc, r.p.Guard)
	doctorH := handler.NewDoctorHandler(r.p.AppointmentSvc, r.p.Guard)

	// 4. Delegate to sub-files
	r.registerAuthRoutes(app, authH, r.credentialLimiter())
	r.registerAdminRoutes(app, adminH)
	r.registerPatientRoutes(app, patientH)
	r.registerDoctorRoutes(app, doctorH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: r.ready,
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

func (r *Router) ready(c fiber.Ctx) bool {
	if !authorize.IsPolicyHealthy() {
		return false
	}
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	if r.p.DB != nil && r.p.DB.Ping(ctx) != nil {
		return false
	}
	if r.p.Redis != nil && r.p.Redis.Ping(ctx).Err() != nil {
		return false
	}
	return true
}

// credentialLimiter throttles credential submissions in production.
func (r *Router) credentialLimiter() fiber.Handler {
	if !r.p.Cfg.IsProduction() {
		return func(c fiber.Ctx) error { return c.Next() }
	}
	if r.p.Redis != nil {
		return middleware.NewLimiterWithRedis(r.p.Redis, r.p.Cfg.Server.RateLimit)
	}
	return middleware.NewLimiter(nil, r.p.Cfg.Server.RateLimit)
}
