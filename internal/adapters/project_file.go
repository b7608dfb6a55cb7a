package adapters

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"portsmith/internal/core"
	"portsmith/internal/ports"
	"portsmith/internal/shared"
	"portsmith/internal/types"
)

type ProjectFileAdapter struct {
	FS afero.Fs
}

func NewProjectFileAdapter(fs afero.Fs) ProjectFileAdapter {
	return ProjectFileAdapter{FS: fs}
}

type projectFile struct {
	Name         string                `yaml:"name"`
	Dependencies []projectRequest      `yaml:"dependencies"`
	Overrides    []types.Override      `yaml:"overrides"`
	BaselineName string                `yaml:"baseline"`
	Defaults     types.ProjectDefaults `yaml:"defaults"`
}

// projectRequest accepts "name[features]:triplet" shorthand as well as
// the mapping form.
type projectRequest types.Request

func (r *projectRequest) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		request, err := core.ParsePackageSpec(node.Value)
		if err != nil {
			return err
		}
		*r = projectRequest(request)
		return nil
	}
	var request types.Request
	if err := node.Decode(&request); err != nil {
		return err
	}
	*r = projectRequest(request)
	return nil
}

func (a ProjectFileAdapter) LoadProject(path string) (types.ProjectManifest, error) {
	data, err := afero.ReadFile(a.FS, path)
	if err != nil {
		return types.ProjectManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("project file not found: %s", path)).
			WithCause(err)
	}
	var file projectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return types.ProjectManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse project yaml").
			WithCause(err)
	}
	project := types.ProjectManifest{
		Name:         file.Name,
		Overrides:    file.Overrides,
		BaselineName: file.BaselineName,
		Defaults:     file.Defaults,
	}
	if len(file.Dependencies) == 0 {
		return types.ProjectManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project declares no dependencies")
	}
	seen := map[string]struct{}{}
	for _, dep := range file.Dependencies {
		request := types.Request(dep)
		request.Name = shared.NormalizePortName(request.Name)
		if request.Name == "" {
			return types.ProjectManifest{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("project dependency has no name")
		}
		key := request.Name + ":" + request.Triplet
		if _, dup := seen[key]; dup {
			return types.ProjectManifest{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("duplicate project dependency %s", key))
		}
		seen[key] = struct{}{}
		project.Dependencies = append(project.Dependencies, request)
	}
	return project, nil
}

var _ ports.ProjectPort = ProjectFileAdapter{}
