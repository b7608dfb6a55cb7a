package types

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"
)

type Dependency struct {
	Name     string   `yaml:"name"`
	Minimum  *Version `yaml:"version_min,omitempty"`
	Platform string   `yaml:"platform,omitempty"`
	Features []string `yaml:"features,omitempty"`

	// DefaultFeatures is nil when the manifest did not say; that means
	// the default features are wanted.
	DefaultFeatures *bool `yaml:"default_features,omitempty"`

	// Host marks a build-time tool dependency resolved for the host
	// triplet instead of the requester's triplet.
	Host bool `yaml:"host,omitempty"`
}

func (d Dependency) WantsDefaultFeatures() bool {
	return d.DefaultFeatures == nil || *d.DefaultFeatures
}

// UnmarshalYAML accepts either a bare package name or a full mapping.
func (d *Dependency) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = Dependency{Name: node.Value}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("dependency must be a string or a mapping")
	}
	type plain Dependency
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*d = Dependency(decoded)
	return nil
}

// Request is a root package request: a package name, the features asked
// for, and an optional minimum version.
type Request struct {
	Name     string   `yaml:"name"`
	Features []string `yaml:"features,omitempty"`
	Minimum  *Version `yaml:"version_min,omitempty"`

	// Triplet overrides the target triplet for this request when set.
	Triplet string `yaml:"triplet,omitempty"`
}
