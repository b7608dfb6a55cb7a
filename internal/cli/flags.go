package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portsmith/internal/app"
	"portsmith/internal/shared"
)

// resolveFlags are shared by every command that runs a resolution.
type resolveFlags struct {
	Project          string
	Ports            string
	OverlayPorts     []string
	Triplets         []string
	Baseline         string
	BaselineName     string
	Installed        string
	Triplet          string
	HostTriplet      string
	Output           string
	Precedence       string
	AllowUnsupported bool
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Project, "project", "", "Project file path")
	cmd.Flags().StringVar(&f.Ports, "ports", "", "Ports directory")
	cmd.Flags().StringSliceVar(&f.OverlayPorts, "overlay-ports", nil, "Overlay ports directories, searched before --ports")
	cmd.Flags().StringSliceVar(&f.Triplets, "triplets", nil, "Triplet directories")
	cmd.Flags().StringVar(&f.Baseline, "baseline", "", "Baseline file")
	cmd.Flags().StringVar(&f.BaselineName, "baseline-name", "", "Baseline to use from the baseline file")
	cmd.Flags().StringVar(&f.Installed, "installed", "", "Installed database file")
	cmd.Flags().StringVar(&f.Triplet, "triplet", "", "Target triplet")
	cmd.Flags().StringVar(&f.HostTriplet, "host-triplet", "", "Host triplet (defaults to the target)")
	cmd.Flags().StringVar(&f.Output, "output", "out", "Output directory")
	cmd.Flags().StringVar(&f.Precedence, "precedence", "", "Version precedence: constraint-checked or override-wins")
	cmd.Flags().BoolVar(&f.AllowUnsupported, "allow-unsupported", false, "Warn instead of failing on unsupported ports")

	_ = viper.BindPFlag("project", cmd.Flags().Lookup("project"))
	_ = viper.BindPFlag("ports", cmd.Flags().Lookup("ports"))
	_ = viper.BindPFlag("overlay_ports", cmd.Flags().Lookup("overlay-ports"))
	_ = viper.BindPFlag("triplets", cmd.Flags().Lookup("triplets"))
	_ = viper.BindPFlag("baseline", cmd.Flags().Lookup("baseline"))
	_ = viper.BindPFlag("baseline_name", cmd.Flags().Lookup("baseline-name"))
	_ = viper.BindPFlag("installed", cmd.Flags().Lookup("installed"))
	_ = viper.BindPFlag("triplet", cmd.Flags().Lookup("triplet"))
	_ = viper.BindPFlag("host_triplet", cmd.Flags().Lookup("host-triplet"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("precedence", cmd.Flags().Lookup("precedence"))
	_ = viper.BindPFlag("allow_unsupported", cmd.Flags().Lookup("allow-unsupported"))
}

func (f *resolveFlags) request(cmd *cobra.Command, packages []string) app.ResolveRequest {
	return app.ResolveRequest{
		ProjectPath:      resolveString(cmd, f.Project, "project", "project"),
		Packages:         packages,
		PortsDir:         resolveString(cmd, f.Ports, "ports", "ports"),
		OverlayPorts:     resolveStrings(cmd, f.OverlayPorts, "overlay_ports", "overlay-ports"),
		TripletDirs:      resolveStrings(cmd, f.Triplets, "triplets", "triplets"),
		BaselinePath:     resolveString(cmd, f.Baseline, "baseline", "baseline"),
		BaselineName:     resolveString(cmd, f.BaselineName, "baseline_name", "baseline-name"),
		InstalledPath:    resolveString(cmd, f.Installed, "installed", "installed"),
		Triplet:          resolveString(cmd, f.Triplet, "triplet", "triplet"),
		HostTriplet:      resolveString(cmd, f.HostTriplet, "host_triplet", "host-triplet"),
		OutputDir:        resolveString(cmd, f.Output, "output", "output"),
		Precedence:       resolveString(cmd, f.Precedence, "precedence", "precedence"),
		AllowUnsupported: resolveBool(cmd, f.AllowUnsupported, "allow_unsupported", "allow-unsupported"),
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return configStrings(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return configStrings(key)
}

// configStrings reads a list key. Environment variables arrive as one
// comma separated string.
func configStrings(key string) []string {
	var out []string
	for _, value := range viper.GetStringSlice(key) {
		out = append(out, shared.SplitList(value)...)
	}
	return out
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
