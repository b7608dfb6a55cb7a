package types

// Action is one resolved node of a plan: what to build or reuse and the
// content identity it will be cached under.
type Action struct {
	Name           string         `yaml:"name"`
	Version        Version        `yaml:"version"`
	Triplet        string         `yaml:"triplet"`
	Features       []string       `yaml:"features,omitempty"`
	Classification Classification `yaml:"classification"`
	Identity       string         `yaml:"identity"`

	// Dependencies and DependencyIdentities are parallel, ordered by
	// (name, triplet).
	Dependencies         []string `yaml:"dependencies,omitempty"`
	DependencyIdentities []string `yaml:"dependency_identities,omitempty"`

	// Requested is true for actions named directly by a root request.
	Requested bool `yaml:"requested,omitempty"`

	// Replaces holds the identity of an installed build this action
	// supersedes.
	Replaces string `yaml:"replaces,omitempty"`
}

// Spec renders the action as name[features]:triplet.
func (a Action) Spec() string {
	return PackageSpec(a.Name, a.Features, a.Triplet)
}

type OrderedPlan struct {
	TargetTriplet string   `yaml:"target_triplet"`
	HostTriplet   string   `yaml:"host_triplet"`
	Actions       []Action `yaml:"actions"`
}

func (p OrderedPlan) Summary() map[Classification]int {
	out := map[Classification]int{}
	for _, action := range p.Actions {
		out[action.Classification]++
	}
	return out
}

// PackageSpec renders name[feature,...]:triplet, omitting empty parts.
func PackageSpec(name string, features []string, triplet string) string {
	spec := name
	if len(features) > 0 {
		spec += "["
		for i, feature := range features {
			if i > 0 {
				spec += ","
			}
			spec += feature
		}
		spec += "]"
	}
	if triplet != "" {
		spec += ":" + triplet
	}
	return spec
}

// InstalledEntry records one installed action in the install database.
type InstalledEntry struct {
	Name     string   `yaml:"name"`
	Triplet  string   `yaml:"triplet"`
	Version  Version  `yaml:"version"`
	Features []string `yaml:"features,omitempty"`
	Identity string   `yaml:"identity"`
}

type InstalledDatabase struct {
	Installed []InstalledEntry `yaml:"installed"`
}
