package app

import (
	"context"

	"portsmith/internal/adapters"
	"portsmith/internal/core"
	"portsmith/internal/types"
)

// CI resolves like Resolve and then marks the actions the CI baseline
// expects to be skipped or to fail.
func (s Service) CI(ctx context.Context, req CIRequest) (CIResult, error) {
	started := s.now()
	exclusions, err := adapters.NewCIBaselineFileAdapter(s.FS, req.CIBaselinePath).Exclusions()
	if err != nil {
		s.observeFailure("ci", err)
		return CIResult{}, err
	}
	_, plan, resolved, hints, err := s.resolvePlan(ctx, req.ResolveRequest)
	if err != nil {
		s.observeFailure("ci", err)
		return CIResult{}, err
	}
	plan = core.ApplyBaseline(plan, exclusions)
	if err := s.writePlan(resolved.OutputDir, plan); err != nil {
		return CIResult{}, err
	}
	s.observePlan("ci", plan, started)

	result := CIResult{Plan: plan, OutputDir: resolved.OutputDir, Hints: hints}
	for _, action := range plan.Actions {
		switch action.Classification {
		case types.ClassificationSkip:
			result.Skipped = append(result.Skipped, action.Spec())
		case types.ClassificationExpectFail:
			result.ExpectedFailures = append(result.ExpectedFailures, action.Spec())
		}
	}
	return result, nil
}
