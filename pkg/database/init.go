package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Alijeyrad/hospital_backend/config"
)

// InitializeDatabases creates the application and casbin databases if they don't exist.
// It connects to the default 'postgres' database to create the others.
func InitializeDatabases(cfg *config.Config) error {
	names := DatabaseNames(cfg)
	if len(names) == 0 {
		return fmt.Errorf("no database names provided")
	}

	conn, err := open(FromCentralConfig(cfg.Database).withDB("postgres"))
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer conn.Close()

	for _, dbName := range names {
		if err := createDatabaseIfNotExists(conn, dbName); err != nil {
			return fmt.Errorf("failed to create database %q: %w", dbName, err)
		}
	}

	return nil
}

// DatabaseNames returns server.databases, or the distinct names of the
// application and casbin databases when that list is empty.
func DatabaseNames(cfg *config.Config) []string {
	if len(cfg.Server.Databases) > 0 {
		return cfg.Server.Databases
	}

	var names []string
	seen := map[string]bool{}
	for _, n := range []string{cfg.Database.DBName, cfg.CasbinDatabase.DBName} {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

// createDatabaseIfNotExists creates a database if it doesn't already exist
func createDatabaseIfNotExists(conn *sql.DB, dbName string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	err := conn.QueryRowContext(context.Background(), query, dbName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if exists {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbName))
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	return nil
}
