package adapters

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"portsmith/internal/ports"
	"portsmith/internal/shared"
	"portsmith/internal/types"
)

const DefaultBaselineName = "default"

// BaselineFileAdapter reads a named baseline out of a baseline file and
// serves the project's overrides next to it. An empty Path means no
// baseline at all. Pins holds the project's overrides as written.
type BaselineFileAdapter struct {
	FS        afero.Fs
	Path      string
	Name      string
	Pins []types.Override
}

func NewBaselineFileAdapter(fs afero.Fs, path string, name string, overrides []types.Override) BaselineFileAdapter {
	return BaselineFileAdapter{FS: fs, Path: path, Name: name, Pins: overrides}
}

func (a BaselineFileAdapter) Baseline() (types.Baseline, error) {
	if a.Path == "" {
		return types.Baseline{}, nil
	}
	data, err := afero.ReadFile(a.FS, a.Path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("baseline file not found: %s", a.Path)).
			WithCause(err)
	}
	var file types.BaselineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse baseline yaml").
			WithCause(err)
	}
	name := a.Name
	if name == "" {
		name = DefaultBaselineName
	}
	entries, ok := file[name]
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("baseline %q not found in %s", name, a.Path))
	}
	baseline := types.Baseline{}
	for _, port := range shared.SortedKeys(entries) {
		entry := entries[port]
		if entry.Baseline == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("baseline entry for %s has no version", port))
		}
		baseline[shared.NormalizePortName(port)] = types.Version{Text: entry.Baseline, PortVersion: entry.PortVersion}
	}
	return baseline, nil
}

func (a BaselineFileAdapter) Overrides() (types.Baseline, error) {
	out := types.Baseline{}
	for _, override := range a.Pins {
		name := shared.NormalizePortName(override.Name)
		if name == "" || override.Version == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("override requires name and version")
		}
		if _, dup := out[name]; dup {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("duplicate override for %s", name))
		}
		out[name] = types.Version{Text: override.Version, PortVersion: override.PortVersion}
	}
	return out, nil
}

var _ ports.BaselineSource = BaselineFileAdapter{}
