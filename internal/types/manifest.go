package types

// SourceControlFile is the in-memory form of a port manifest.
type SourceControlFile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Version is the release the manifest currently describes. Scheme
	// on this field is the scheme for every release of the port.
	Version Version `yaml:",inline"`

	// Versions lists other releases that may be selected through a
	// baseline or override.
	Versions []Version `yaml:"versions,omitempty"`

	Supports        string             `yaml:"supports,omitempty"`
	DefaultFeatures []string           `yaml:"default_features,omitempty"`
	Dependencies    []Dependency       `yaml:"dependencies,omitempty"`
	Features        []FeatureParagraph `yaml:"features,omitempty"`
}

type FeatureParagraph struct {
	Name         string       `yaml:"name"`
	Description  string       `yaml:"description,omitempty"`
	Supports     string       `yaml:"supports,omitempty"`
	Dependencies []Dependency `yaml:"dependencies,omitempty"`
}

// Feature returns the named feature paragraph.
func (m SourceControlFile) Feature(name string) (FeatureParagraph, bool) {
	for _, feature := range m.Features {
		if feature.Name == name {
			return feature, true
		}
	}
	return FeatureParagraph{}, false
}

// DeclaredVersions returns the current version followed by every other
// declared release, each carrying the manifest's scheme.
func (m SourceControlFile) DeclaredVersions() []Version {
	out := make([]Version, 0, len(m.Versions)+1)
	out = append(out, m.Version)
	for _, v := range m.Versions {
		if v.Scheme == "" {
			v.Scheme = m.Version.Scheme
		}
		out = append(out, v)
	}
	return out
}
