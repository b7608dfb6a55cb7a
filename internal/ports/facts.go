package ports

import "portsmith/internal/types"

// FactsProvider returns the triplet definition for a triplet name.
type FactsProvider interface {
	Triplet(name string) (types.Triplet, error)
}
