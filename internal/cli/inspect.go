package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"portsmith/internal/app"
	"portsmith/internal/shared"
	"portsmith/internal/types"
)

type inspectOptions struct {
	Plan string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a written plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(opts)
		},
	}
	cmd.Flags().StringVar(&opts.Plan, "plan", "out/plan.yaml", "Plan file")
	return cmd
}

func runInspect(opts inspectOptions) error {
	return withService(func(service app.Service) error {
		result, err := service.Inspect(app.InspectRequest{PlanPath: opts.Plan})
		if err != nil {
			return err
		}
		fmt.Printf("target %s, host %s: %d actions\n", result.TargetTriplet, result.HostTriplet, result.Total)
		counts := map[string]int{}
		for classification, count := range result.Summary {
			counts[string(classification)] = count
		}
		for _, name := range shared.SortedKeys(counts) {
			fmt.Printf("- %s: %d\n", name, counts[name])
		}
		if len(result.Requested) > 0 {
			fmt.Printf("requested: %s\n", strings.Join(result.Requested, ", "))
		}
		if len(result.Replacing) > 0 {
			fmt.Printf("replacing stale installs: %s\n", strings.Join(result.Replacing, ", "))
		}
		if result.Summary[types.ClassificationExpectFail] > 0 {
			fmt.Println("plan carries expected failures from a ci baseline")
		}
		return nil
	})
}
