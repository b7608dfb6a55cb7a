package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portsmith/internal/app"
)

func newCICommand() *cobra.Command {
	flags := &resolveFlags{}
	var ciBaseline string
	cmd := &cobra.Command{
		Use:   "ci [package[features]:triplet ...]",
		Short: "Resolve and annotate the plan with a CI baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCI(cmd.Context(), cmd, flags, resolveString(cmd, ciBaseline, "ci_baseline", "ci-baseline"), args)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&ciBaseline, "ci-baseline", "", "CI baseline file (port:triplet=skip|fail|pass)")
	_ = viper.BindPFlag("ci_baseline", cmd.Flags().Lookup("ci-baseline"))
	return cmd
}

func runCI(ctx context.Context, cmd *cobra.Command, flags *resolveFlags, ciBaseline string, args []string) error {
	return withService(func(service app.Service) error {
		result, err := service.CI(ctx, app.CIRequest{
			ResolveRequest: flags.request(cmd, args),
			CIBaselinePath: ciBaseline,
		})
		if err != nil {
			return err
		}
		emitHints(result.Hints)
		printPlan(result.Plan)
		fmt.Printf("skipped: %d, expected failures: %d\n", len(result.Skipped), len(result.ExpectedFailures))
		return nil
	})
}
