package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"portsmith/internal/app"
)

type installRecordOptions struct {
	Plan      string
	Installed string
}

func newInstallRecordCommand() *cobra.Command {
	opts := installRecordOptions{}
	cmd := &cobra.Command{
		Use:   "install-record",
		Short: "Record a plan's actions as installed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstallRecord(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Plan, "plan", "out/plan.yaml", "Plan file")
	cmd.Flags().StringVar(&opts.Installed, "installed", "", "Installed database file")
	return cmd
}

func runInstallRecord(ctx context.Context, cmd *cobra.Command, opts installRecordOptions) error {
	return withService(func(service app.Service) error {
		result, err := service.InstallRecord(ctx, app.InstallRecordRequest{
			PlanPath:      opts.Plan,
			InstalledPath: resolveString(cmd, opts.Installed, "installed", "installed"),
		})
		if err != nil {
			return err
		}
		fmt.Printf("recorded %d actions (%d skipped)\n", result.Recorded, result.Skipped)
		return nil
	})
}
