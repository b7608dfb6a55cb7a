package app

import (
	"fmt"
	"strings"

	"portsmith/internal/types"
)

// defaultsHint pairs a flag name with a project defaults key for hint messages.
type defaultsHint struct {
	FlagName    string
	DefaultsKey string
}

// checkResolveDefaultsHints returns hints for resolve flags that could
// be replaced by project defaults. A hint is generated when the user
// explicitly provided a value and the project also sets one.
func checkResolveDefaultsHints(req ResolveRequest, defaults types.ProjectDefaults) []string {
	checks := []struct {
		hint       defaultsHint
		provided   bool
		hasDefault bool
	}{
		{
			hint:       defaultsHint{"--triplet", "defaults.triplet"},
			provided:   strings.TrimSpace(req.Triplet) != "",
			hasDefault: defaults.Triplet != "",
		},
		{
			hint:       defaultsHint{"--host-triplet", "defaults.host_triplet"},
			provided:   strings.TrimSpace(req.HostTriplet) != "",
			hasDefault: defaults.HostTriplet != "",
		},
		{
			hint:       defaultsHint{"--ports", "defaults.ports"},
			provided:   strings.TrimSpace(req.PortsDir) != "",
			hasDefault: defaults.Ports != "",
		},
		{
			hint:       defaultsHint{"--baseline", "defaults.baseline"},
			provided:   strings.TrimSpace(req.BaselinePath) != "",
			hasDefault: defaults.Baseline != "",
		},
		{
			hint:       defaultsHint{"--overlay-ports", "defaults.overlay_ports"},
			provided:   len(req.OverlayPorts) > 0,
			hasDefault: len(defaults.OverlayPorts) > 0,
		},
		{
			hint:       defaultsHint{"--triplets", "defaults.triplets"},
			provided:   len(req.TripletDirs) > 0,
			hasDefault: len(defaults.Triplets) > 0,
		},
		{
			hint:       defaultsHint{"--installed", "defaults.installed"},
			provided:   strings.TrimSpace(req.InstalledPath) != "",
			hasDefault: defaults.Installed != "",
		},
	}

	var hints []string
	for _, c := range checks {
		if c.provided && c.hasDefault {
			hints = append(hints, fmt.Sprintf(
				"hint: %s is also set in the project file (%s); you can omit the flag",
				c.hint.FlagName, c.hint.DefaultsKey,
			))
		}
	}
	return hints
}
