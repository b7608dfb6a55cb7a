package ports

import "portsmith/internal/types"

type BaselineSource interface {
	Baseline() (types.Baseline, error)
	Overrides() (types.Baseline, error)
}

type ExclusionSource interface {
	Exclusions() (types.ExclusionSet, error)
}
