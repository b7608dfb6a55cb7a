package core

import (
	"context"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portsmith/internal/policies"
	"portsmith/internal/ports"
	"portsmith/internal/types"
)

// Resolver is the single entry point of the engine: it loads baseline
// data and triplet facts through its ports, expands the closure and
// orders it into a plan.
type Resolver struct {
	Ports            ports.PackageLookup
	Baseline         ports.BaselineSource
	Facts            ports.FactsProvider
	Installed        ports.InstalledStateOracle
	Policy           policies.Precedence
	AllowUnsupported bool
}

func NewResolver(lookup ports.PackageLookup, baseline ports.BaselineSource, facts ports.FactsProvider, installed ports.InstalledStateOracle) Resolver {
	return Resolver{
		Ports:     lookup,
		Baseline:  baseline,
		Facts:     facts,
		Installed: installed,
		Policy:    policies.DefaultPrecedence,
	}
}

// Resolve computes the ordered plan for roots on the target triplet,
// resolving host dependencies on host. An empty host means the target
// is also the host. Any error aborts the pass; no partial plan is
// returned.
func (r Resolver) Resolve(ctx context.Context, roots []types.Request, target string, host string) (types.OrderedPlan, error) {
	closure, err := r.ResolveClosure(ctx, roots, target, host)
	if err != nil {
		return types.OrderedPlan{}, err
	}
	plan, err := NewPlanComputer(r.Installed).Compute(ctx, closure)
	if err != nil {
		return types.OrderedPlan{}, err
	}
	summary := plan.Summary()
	log.Ctx(ctx).Debug().
		Int("actions", len(plan.Actions)).
		Int("needs_build", summary[types.ClassificationNeedsBuild]).
		Int("already_satisfied", summary[types.ClassificationAlreadySatisfied]).
		Msg("resolution complete")
	return plan, nil
}

// ResolveClosure runs the graph builder without ordering the result.
func (r Resolver) ResolveClosure(ctx context.Context, roots []types.Request, target string, host string) (Closure, error) {
	if r.Ports == nil || r.Facts == nil {
		return Closure{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver requires package lookup and facts ports")
	}
	if len(roots) == 0 {
		return Closure{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no packages requested")
	}
	if target == "" {
		return Closure{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("target triplet must be set")
	}
	if host == "" {
		host = target
	}

	targetTriplet, err := r.Facts.Triplet(target)
	if err != nil {
		return Closure{}, err
	}
	hostTriplet, err := r.Facts.Triplet(host)
	if err != nil {
		return Closure{}, err
	}
	extra := map[string]types.Triplet{}
	for _, name := range requestTriplets(roots) {
		if name == target || name == host {
			continue
		}
		triplet, err := r.Facts.Triplet(name)
		if err != nil {
			return Closure{}, err
		}
		extra[name] = triplet
	}

	var baseline, overrides types.Baseline
	if r.Baseline != nil {
		if baseline, err = r.Baseline.Baseline(); err != nil {
			return Closure{}, err
		}
		if overrides, err = r.Baseline.Overrides(); err != nil {
			return Closure{}, err
		}
	}

	builder := NewClosureBuilder(r.Ports, r.Policy)
	builder.AllowUnsupported = r.AllowUnsupported
	return builder.Build(ctx, ClosureRequest{
		Roots:     roots,
		Baseline:  baseline,
		Overrides: overrides,
		Target:    targetTriplet,
		Host:      hostTriplet,
		Triplets:  extra,
	})
}

func requestTriplets(roots []types.Request) []string {
	seen := map[string]struct{}{}
	for _, root := range roots {
		if root.Triplet != "" {
			seen[root.Triplet] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
