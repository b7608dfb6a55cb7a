package types

// Baseline pins package names to versions. Overrides use the same shape
// and win over baseline entries.
type Baseline map[string]Version

// BaselineFile is the on-disk baseline: named baselines, of which
// "default" is the one used unless a project selects another.
type BaselineFile map[string]map[string]BaselineEntry

type BaselineEntry struct {
	Baseline    string `yaml:"baseline"`
	PortVersion int    `yaml:"port_version,omitempty"`
}

// ExclusionSet maps triplet name to package name to CI state.
type ExclusionSet map[string]map[string]ExclusionState

func (e ExclusionSet) Lookup(triplet string, name string) (ExclusionState, bool) {
	entries, ok := e[triplet]
	if !ok {
		return "", false
	}
	state, ok := entries[name]
	return state, ok
}
