package ports

import "portsmith/internal/types"

type PlanWriterPort interface {
	WritePlan(plan types.OrderedPlan) error
}
