package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/hospital_backend/config"
	"github.com/Alijeyrad/hospital_backend/internal/events"
	"github.com/Alijeyrad/hospital_backend/internal/repo"
	"github.com/Alijeyrad/hospital_backend/internal/service/admin"
	"github.com/Alijeyrad/hospital_backend/internal/service/appointment"
	"github.com/Alijeyrad/hospital_backend/internal/service/auth"
	"github.com/Alijeyrad/hospital_backend/internal/session"
	"github.com/Alijeyrad/hospital_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/hospital_backend/pkg/paseto"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePasetoManager,
		ProvideSessionManager,
		ProvideAuthService,
		ProvideGuard,
		ProvideAdminService,
		ProvideAppointmentService,
	),
	fx.Invoke(BootstrapAdmin),
)

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideSessionManager(rdb *redis.Client, tokens *pasetotoken.Manager, cfg *config.Config) *session.Manager {
	ttl := time.Duration(cfg.Authentication.SessionTTLMinutes) * time.Minute
	return session.NewManager(session.NewRedisStore(rdb), tokens, ttl)
}

func ProvideAuthService(store repo.Store, sessions *session.Manager) auth.Service {
	return auth.New(store, sessions)
}

func ProvideGuard(authz authorize.IAuthorization) *auth.Guard {
	return auth.NewGuard(authz)
}

func ProvideAdminService(store repo.Store) admin.Service {
	return admin.New(store)
}

func ProvideAppointmentService(store repo.Store, pub events.Publisher, cfg *config.Config) (appointment.Service, error) {
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("server.timezone: %w", err)
	}
	return appointment.New(store, pub, loc), nil
}

// BootstrapAdmin makes sure the admin patient exists once the schema is in
// place. Without auto-migrate it is left to "system migrate".
func BootstrapAdmin(lc fx.Lifecycle, svc admin.Service, cfg *config.Config) {
	if !cfg.Database.Migrations.AutoMigrate {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			created, err := svc.EnsureAdmin(ctx, AdminFromConfig(cfg))
			if err != nil {
				return err
			}
			slog.Debug("admin bootstrap done", "created", created)
			return nil
		},
	})
}

func AdminFromConfig(cfg *config.Config) admin.BootstrapAdmin {
	return admin.BootstrapAdmin{
		Username: cfg.Bootstrap.AdminUsername,
		Password: cfg.Bootstrap.AdminPassword,
		Name:     cfg.Bootstrap.AdminName,
	}
}
