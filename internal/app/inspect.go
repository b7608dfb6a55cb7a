package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"portsmith/internal/adapters"
)

func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	planPath := strings.TrimSpace(req.PlanPath)
	if planPath == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("plan path is required")
	}
	plan, err := adapters.NewPlanReaderAdapter(s.FS).ReadPlan(planPath)
	if err != nil {
		return InspectResult{}, err
	}
	result := InspectResult{
		TargetTriplet: plan.TargetTriplet,
		HostTriplet:   plan.HostTriplet,
		Total:         len(plan.Actions),
		Summary:       plan.Summary(),
	}
	for _, action := range plan.Actions {
		spec := action.Spec()
		result.Order = append(result.Order, spec)
		if action.Requested {
			result.Requested = append(result.Requested, spec)
		}
		if action.Replaces != "" {
			result.Replacing = append(result.Replacing, spec)
		}
	}
	return result, nil
}
