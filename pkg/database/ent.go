package database

import (
	"context"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/hospital_backend/config"
	"github.com/Alijeyrad/hospital_backend/internal/repo"
)

// NewRepoClient creates a repository client from central config
func NewRepoClient(cfg config.DatabaseConfig) (*repo.Client, error) {
	return NewRepoClientFromConfig(FromCentralConfig(cfg))
}

// NewRepoClientFromConfig creates a repository client from package Config
func NewRepoClientFromConfig(cfg Config) (*repo.Client, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	var drv dialect.Driver = entsql.OpenDB(dialect.Postgres, db)
	if cfg.LogQueries {
		drv = dialect.DebugWithContext(drv, slowQueryLogger(cfg.SlowQueryThresholdMs))
	}

	return repo.NewClient(drv), nil
}

// Migrate creates or upgrades the application schema.
func Migrate(ctx context.Context, client *repo.Client) error {
	return client.Migrate(ctx)
}

func slowQueryLogger(thresholdMs int) func(context.Context, ...any) {
	threshold := time.Duration(thresholdMs) * time.Millisecond
	return func(ctx context.Context, v ...any) {
		if threshold > 0 {
			slog.DebugContext(ctx, "sql", "query", v, "slow_threshold", threshold.String())
			return
		}
		slog.DebugContext(ctx, "sql", "query", v)
	}
}
