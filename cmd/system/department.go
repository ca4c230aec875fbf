package system

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/hospital_backend/internal/service/admin"
	"github.com/Alijeyrad/hospital_backend/pkg/database"
)

func NewDepartmentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "department",
		Short: "Manage hospital departments",
	}

	cmd.AddCommand(newDepartmentAddCommand())
	cmd.AddCommand(newDepartmentListCommand())

	return cmd
}

func newDepartmentAddCommand() *cobra.Command {
	var description, note string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, svc admin.Service) error {
				d, err := svc.CreateDepartment(ctx, admin.CreateDepartmentRequest{
					Name:              args[0],
					Description:       description,
					DoctorsRegistered: note,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Department %q created with id %d.\n", d.Name, d.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Department description")
	cmd.Flags().StringVar(&note, "doctors", "", "Free text note about registered doctors")

	return cmd
}

func newDepartmentListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, svc admin.Service) error {
				deps, err := svc.ListDepartments(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
				for _, d := range deps {
					fmt.Fprintf(w, "%d\t%s\t%s\n", d.ID, d.Name, d.Description)
				}
				return w.Flush()
			})
		},
	}
}

func withAdmin(cmd *cobra.Command, fn func(ctx context.Context, svc admin.Service) error) error {
	cfg, err := readConfig(cmd)
	if err != nil {
		return err
	}

	client, err := database.NewRepoClient(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create repo client: %w", err)
	}
	defer client.Close()

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	return fn(ctx, admin.New(client))
}
