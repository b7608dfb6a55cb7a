package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"portsmith/internal/app"
	"portsmith/internal/types"
)

func newResolveCommand() *cobra.Command {
	flags := &resolveFlags{}
	cmd := &cobra.Command{
		Use:   "resolve [package[features]:triplet ...]",
		Short: "Resolve packages into an ordered install plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd, flags, args)
		},
	}
	flags.register(cmd)
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, flags *resolveFlags, args []string) error {
	return withService(func(service app.Service) error {
		result, err := service.Resolve(ctx, flags.request(cmd, args))
		if err != nil {
			return err
		}
		emitHints(result.Hints)
		printPlan(result.Plan)
		if result.OutputDir != "" {
			fmt.Printf("plan written to %s\n", result.OutputDir)
		}
		return nil
	})
}

func printPlan(plan types.OrderedPlan) {
	summary := plan.Summary()
	fmt.Printf("target %s, host %s: %d actions (%d to build, %d satisfied)\n",
		plan.TargetTriplet, plan.HostTriplet, len(plan.Actions),
		summary[types.ClassificationNeedsBuild], summary[types.ClassificationAlreadySatisfied])
	for _, action := range plan.Actions {
		fmt.Printf("  %-40s %-12s %s\n", action.Spec(), action.Version.String(), action.Classification)
	}
}

// emitHints writes hint messages to stderr.
func emitHints(hints []string) {
	for _, h := range hints {
		fmt.Fprintln(os.Stderr, h)
	}
}
