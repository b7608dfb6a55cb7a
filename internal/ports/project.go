package ports

import "portsmith/internal/types"

type ProjectPort interface {
	LoadProject(path string) (types.ProjectManifest, error)
}
