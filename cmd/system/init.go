package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/hospital_backend/pkg/database"
)

func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configured databases if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Initializing databases...")
			if err := database.InitializeDatabases(cfg); err != nil {
				return fmt.Errorf("failed to initialize databases: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Databases initialized successfully.")
			return nil
		},
	}

	return cmd
}
