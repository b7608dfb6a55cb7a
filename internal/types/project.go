package types

// Override pins one package to a version regardless of the baseline.
type Override struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	PortVersion int    `yaml:"port_version,omitempty"`
}

// ProjectManifest is the top-level project file: the root requests plus
// the version policy inputs that apply to them.
type ProjectManifest struct {
	Name         string     `yaml:"name"`
	Dependencies []Request  `yaml:"dependencies"`
	Overrides    []Override `yaml:"overrides,omitempty"`

	// BaselineName picks an entry from the baseline file; empty means
	// "default".
	BaselineName string `yaml:"baseline,omitempty"`

	Defaults ProjectDefaults `yaml:"defaults,omitempty"`
}

// ProjectDefaults provides values the CLI falls back to when a flag or
// config key is not set.
type ProjectDefaults struct {
	Triplet     string `yaml:"triplet,omitempty"`
	HostTriplet string `yaml:"host_triplet,omitempty"`
	Ports       string `yaml:"ports,omitempty"`
	Baseline    string `yaml:"baseline,omitempty"`

	OverlayPorts []string `yaml:"overlay_ports,omitempty"`
	Triplets     []string `yaml:"triplets,omitempty"`
	Installed    string   `yaml:"installed,omitempty"`
}
