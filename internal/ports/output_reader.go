package ports

import "portsmith/internal/types"

type PlanReaderPort interface {
	ReadPlan(path string) (types.OrderedPlan, error)
}
