package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portsmith/internal/app"
)

type validateOptions struct {
	Ports        string
	OverlayPorts []string
}

func newValidateCommand() *cobra.Command {
	opts := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [port ...]",
		Short: "Validate port manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.Ports, "ports", "", "Ports directory")
	cmd.Flags().StringSliceVar(&opts.OverlayPorts, "overlay-ports", nil, "Overlay ports directories")
	_ = viper.BindPFlag("ports", cmd.Flags().Lookup("ports"))
	_ = viper.BindPFlag("overlay_ports", cmd.Flags().Lookup("overlay-ports"))
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts validateOptions, args []string) error {
	return withService(func(service app.Service) error {
		result, err := service.Validate(ctx, app.ValidateRequest{
			PortsDir:     resolveString(cmd, opts.Ports, "ports", "ports"),
			OverlayPorts: resolveStrings(cmd, opts.OverlayPorts, "overlay_ports", "overlay-ports"),
			Ports:        args,
		})
		for _, failure := range result.Failures {
			fmt.Printf("- %s: %s\n", failure.Port, failure.Message)
		}
		if err != nil {
			return err
		}
		fmt.Printf("validated: %d ports\n", result.Validated)
		return nil
	})
}
