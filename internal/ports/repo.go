package ports

import "portsmith/internal/types"

// PackageLookup returns the manifest of a port. A missing port is
// reported with ok=false and a nil error.
type PackageLookup interface {
	GetManifest(name string) (types.SourceControlFile, bool, error)
}

// PortTreePort exposes the whole port set for commands that walk it.
type PortTreePort interface {
	PackageLookup
	PortNames() ([]string, error)
}
