package system

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/hospital_backend/internal/app"
	"github.com/Alijeyrad/hospital_backend/internal/service/admin"
	"github.com/Alijeyrad/hospital_backend/pkg/authorize"
	"github.com/Alijeyrad/hospital_backend/pkg/database"
	"github.com/Alijeyrad/hospital_backend/pkg/util/password"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema, seed policies and the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			// application db
			fmt.Fprintln(out, "Running migrations for application DB.")
			client, err := database.NewRepoClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to create repo client: %w", err)
			}
			defer client.Close()

			if err := database.Migrate(ctx, client); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			if err := password.Configure(password.FromCentralConfig(cfg.Password)); err != nil {
				return err
			}
			created, err := admin.New(client).EnsureAdmin(ctx, app.AdminFromConfig(cfg))
			if err != nil {
				return fmt.Errorf("failed to bootstrap admin: %w", err)
			}
			if created {
				fmt.Fprintf(out, "Admin account %q created.\n", cfg.Bootstrap.AdminUsername)
			}

			// casbin db
			if !cfg.Authorization.PersistPolicies {
				fmt.Fprintln(out, "Policies are kept in memory, skipping Casbin DB.")
				fmt.Fprintln(out, "Migrations executed successfully.")
				return nil
			}

			fmt.Fprintln(out, "Running migrations for Casbin DB.")
			acfg := authorize.FromCentralConfig(cfg.Authorization, database.NewDSN(cfg.CasbinDatabase))
			enforcer, cleanup, err := authorize.NewEnforcer(ctx, acfg)
			if err != nil {
				return fmt.Errorf("failed to create enforcer: %w", err)
			}
			defer cleanup(context.Background())

			authz, err := authorize.NewAuthorization(enforcer)
			if err != nil {
				return fmt.Errorf("failed to create authorization: %w", err)
			}

			slog.Info("Seeding Casbin policies...")
			if err := authorize.SeedDefaultPolicies(ctx, authz); err != nil {
				return fmt.Errorf("failed to seed policies: %w", err)
			}

			fmt.Fprintln(out, "Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
