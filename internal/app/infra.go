package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/hospital_backend/config"
	"github.com/Alijeyrad/hospital_backend/internal/events"
	"github.com/Alijeyrad/hospital_backend/internal/repo"
	"github.com/Alijeyrad/hospital_backend/pkg/authorize"
	"github.com/Alijeyrad/hospital_backend/pkg/database"
	"github.com/Alijeyrad/hospital_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/hospital_backend/pkg/redis"
	"github.com/Alijeyrad/hospital_backend/pkg/util/password"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideRepoClient),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvidePublisher),
	fx.Invoke(ConfigurePassword),
)

func ProvideRepoClient(lc fx.Lifecycle, cfg *config.Config) (*repo.Client, error) {
	client, err := database.NewRepoClient(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				return err
			}
			if !cfg.Database.Migrations.AutoMigrate {
				return nil
			}
			slog.Info("running schema migration")
			return database.Migrate(ctx, client)
		},
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return client.Close()
		},
	})
	return client, nil
}

func ProvideStore(client *repo.Client) repo.Store {
	return client
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb, err := redispkg.NewRedisFromCentral(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	ctx := context.Background()
	acfg := authorize.FromCentralConfig(cfg.Authorization, database.NewDSN(cfg.CasbinDatabase))

	enforcer, cleanup, err := authorize.NewEnforcer(ctx, acfg)
	if err != nil {
		return nil, err
	}
	authz, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		cleanup(ctx)
		return nil, err
	}

	// In-memory policies start empty on every boot.
	if !acfg.PersistPolicies {
		if err := authorize.SeedDefaultPolicies(ctx, authz); err != nil {
			cleanup(ctx)
			return nil, err
		}
	}

	if acfg.EnableAudit {
		authz = authorize.NewAuditedAuthorization(authz, slog.Default())
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return authz, nil
}

// ProvideNatsClient returns nil when no broker is configured.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		slog.Info("nats.url not set, domain events are dropped")
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name("hospital_backend"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvidePublisher(nc *nats.Conn, cfg *config.Config) events.Publisher {
	if nc == nil {
		return events.Nop{}
	}
	return events.NewNATSPublisher(nc, cfg.Nats.Subject)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ConfigurePassword applies the argon2id parameters before any hashing.
func ConfigurePassword(cfg *config.Config) error {
	return password.Configure(password.FromCentralConfig(cfg.Password))
}
