package ports

import (
	"time"

	"portsmith/internal/types"
)

// MetricsPort records statistics about a finished resolution.
type MetricsPort interface {
	ObservePlan(command string, plan types.OrderedPlan, elapsed time.Duration)
	ObserveFailure(command string, kind string)
	Flush() error
}
