package ports

import "portsmith/internal/types"

type InstalledStateOracle interface {
	InstalledIdentity(name string, triplet string) (string, bool, error)
}

type InstalledWriterPort interface {
	RecordInstalled(entries []types.InstalledEntry) error
}
