package app

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"portsmith/internal/types"
)

const ProjectFileName = "portsmith.project.yaml"

// applyProjectDefaults fills empty request fields from the project
// defaults. Relative paths in the project file are taken relative to
// the project file's directory.
func applyProjectDefaults(req ResolveRequest, project types.ProjectManifest, projectDir string) ResolveRequest {
	defaults := project.Defaults
	if strings.TrimSpace(req.Triplet) == "" {
		req.Triplet = defaults.Triplet
	}
	if strings.TrimSpace(req.HostTriplet) == "" {
		req.HostTriplet = defaults.HostTriplet
	}
	if strings.TrimSpace(req.PortsDir) == "" && defaults.Ports != "" {
		req.PortsDir = relativeTo(projectDir, defaults.Ports)
	}
	if strings.TrimSpace(req.BaselinePath) == "" && defaults.Baseline != "" {
		req.BaselinePath = relativeTo(projectDir, defaults.Baseline)
	}
	if len(req.OverlayPorts) == 0 {
		req.OverlayPorts = relativeAll(projectDir, defaults.OverlayPorts)
	}
	if len(req.TripletDirs) == 0 {
		req.TripletDirs = relativeAll(projectDir, defaults.Triplets)
	}
	if strings.TrimSpace(req.InstalledPath) == "" && defaults.Installed != "" {
		req.InstalledPath = relativeTo(projectDir, defaults.Installed)
	}
	if strings.TrimSpace(req.BaselineName) == "" {
		req.BaselineName = project.BaselineName
	}
	return req
}

func relativeTo(dir string, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func relativeAll(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		out = append(out, relativeTo(dir, path))
	}
	return out
}

// discoverProject returns the project file in the working directory,
// or "" when there is none.
func discoverProject(fs afero.Fs) string {
	if _, err := fs.Stat(ProjectFileName); err != nil {
		return ""
	}
	return ProjectFileName
}
