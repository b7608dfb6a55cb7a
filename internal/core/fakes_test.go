package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"portsmith/internal/types"
)

var (
	x64Linux   = types.Triplet{Name: "x64-linux", Arch: "x64", OS: "linux", Linkage: "static", CRT: "dynamic"}
	x64Windows = types.Triplet{Name: "x64-windows", Arch: "x64", OS: "windows", Linkage: "dynamic", CRT: "dynamic"}
	arm64Linux = types.Triplet{Name: "arm64-linux", Arch: "arm64", OS: "linux", Linkage: "static", CRT: "dynamic"}
)

type testPorts map[string]types.SourceControlFile

func (p testPorts) GetManifest(name string) (types.SourceControlFile, bool, error) {
	manifest, ok := p[name]
	return manifest, ok, nil
}

// foldedPorts looks names up case-insensitively, like the port tree.
type foldedPorts map[string]types.SourceControlFile

func (p foldedPorts) GetManifest(name string) (types.SourceControlFile, bool, error) {
	manifest, ok := p[strings.ToLower(name)]
	return manifest, ok, nil
}

type testInstalled map[string]string

func (i testInstalled) InstalledIdentity(name string, triplet string) (string, bool, error) {
	identity, ok := i[name+":"+triplet]
	return identity, ok, nil
}

type testBaseline struct {
	baseline  types.Baseline
	overrides types.Baseline
}

func (b testBaseline) Baseline() (types.Baseline, error) {
	return b.baseline, nil
}

func (b testBaseline) Overrides() (types.Baseline, error) {
	return b.overrides, nil
}

type testFacts map[string]types.Triplet

func (f testFacts) Triplet(name string) (types.Triplet, error) {
	triplet, ok := f[name]
	if !ok {
		return types.Triplet{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("unknown triplet %s", name))
	}
	return triplet, nil
}

func allTriplets() testFacts {
	return testFacts{
		x64Linux.Name:   x64Linux,
		x64Windows.Name: x64Windows,
		arm64Linux.Name: arm64Linux,
	}
}

func port(name string, version string, deps ...types.Dependency) types.SourceControlFile {
	return types.SourceControlFile{
		Name:         name,
		Version:      types.Version{Text: version, Scheme: types.VersionSchemeRelaxed},
		Dependencies: deps,
	}
}

func minimum(text string) *types.Version {
	return &types.Version{Text: text}
}

func newTestResolver(p testPorts, baseline testBaseline, installed testInstalled) Resolver {
	return NewResolver(p, baseline, allTriplets(), installed)
}

func actionSpecs(plan types.OrderedPlan) []string {
	out := make([]string, 0, len(plan.Actions))
	for _, action := range plan.Actions {
		out = append(out, fmt.Sprintf("%s@%s:%s", action.Name, action.Version.String(), action.Triplet))
	}
	return out
}

func findAction(plan types.OrderedPlan, name string, triplet string) (types.Action, bool) {
	for _, action := range plan.Actions {
		if action.Name == name && action.Triplet == triplet {
			return action, true
		}
	}
	return types.Action{}, false
}
