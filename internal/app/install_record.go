package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portsmith/internal/adapters"
	"portsmith/internal/types"
)

// InstallRecord writes the buildable actions of a plan into the
// installed database. Actions a CI baseline marked skip or expect-fail
// are left out.
func (s Service) InstallRecord(ctx context.Context, req InstallRecordRequest) (InstallRecordResult, error) {
	if strings.TrimSpace(req.PlanPath) == "" {
		return InstallRecordResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("plan path is required")
	}
	if strings.TrimSpace(req.InstalledPath) == "" {
		return InstallRecordResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("installed database path is required")
	}
	plan, err := adapters.NewPlanReaderAdapter(s.FS).ReadPlan(req.PlanPath)
	if err != nil {
		return InstallRecordResult{}, err
	}
	result := InstallRecordResult{}
	var entries []types.InstalledEntry
	for _, action := range plan.Actions {
		switch action.Classification {
		case types.ClassificationSkip, types.ClassificationExpectFail:
			result.Skipped++
			continue
		}
		entries = append(entries, types.InstalledEntry{
			Name:     action.Name,
			Triplet:  action.Triplet,
			Version:  action.Version,
			Features: action.Features,
			Identity: action.Identity,
		})
	}
	if err := adapters.NewInstalledDBAdapter(s.FS, req.InstalledPath).RecordInstalled(entries); err != nil {
		return InstallRecordResult{}, err
	}
	result.Recorded = len(entries)
	log.Ctx(ctx).Debug().Int("recorded", result.Recorded).Int("skipped", result.Skipped).Msg("install recorded")
	return result, nil
}
