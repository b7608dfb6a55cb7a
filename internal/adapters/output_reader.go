package adapters

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"portsmith/internal/ports"
	"portsmith/internal/types"
)

type PlanReaderAdapter struct {
	FS afero.Fs
}

func NewPlanReaderAdapter(fs afero.Fs) PlanReaderAdapter {
	return PlanReaderAdapter{FS: fs}
}

// ReadPlan loads a plan.yaml and checks that every dependency it names
// appears earlier in the action list.
func (a PlanReaderAdapter) ReadPlan(path string) (types.OrderedPlan, error) {
	data, err := afero.ReadFile(a.FS, path)
	if err != nil {
		return types.OrderedPlan{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("plan not found: %s", path)).
			WithCause(err)
	}
	var plan types.OrderedPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return types.OrderedPlan{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse plan yaml").
			WithCause(err)
	}
	if plan.TargetTriplet == "" {
		return types.OrderedPlan{}, invalidPlan("plan has no target triplet")
	}
	seen := map[string]struct{}{}
	for _, action := range plan.Actions {
		key := action.Name + ":" + action.Triplet
		if action.Name == "" || action.Triplet == "" || action.Identity == "" {
			return types.OrderedPlan{}, invalidPlan(fmt.Sprintf("incomplete action %q", key))
		}
		if len(action.Dependencies) != len(action.DependencyIdentities) {
			return types.OrderedPlan{}, invalidPlan(fmt.Sprintf("action %s has mismatched dependency identities", key))
		}
		for _, dep := range action.Dependencies {
			if _, ok := seen[dep]; !ok {
				return types.OrderedPlan{}, invalidPlan(fmt.Sprintf("action %s depends on %s which is not ordered before it", key, dep))
			}
		}
		if _, dup := seen[key]; dup {
			return types.OrderedPlan{}, invalidPlan(fmt.Sprintf("duplicate action %s", key))
		}
		seen[key] = struct{}{}
	}
	return plan, nil
}

func invalidPlan(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

var _ ports.PlanReaderPort = PlanReaderAdapter{}
