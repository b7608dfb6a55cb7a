package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portsmith/internal/ports"
	"portsmith/internal/types"
)

type PlanComputer struct {
	Installed ports.InstalledStateOracle
}

func NewPlanComputer(installed ports.InstalledStateOracle) PlanComputer {
	return PlanComputer{Installed: installed}
}

const (
	visitWhite = iota
	visitGray
	visitBlack
)

type planRun struct {
	computer   PlanComputer
	closure    Closure
	state      []int
	identities []string
	stack      []int
	plan       types.OrderedPlan
}

// Compute orders the closure depth first, dependencies before their
// dependents, and stamps each action with its content identity. Roots
// and edges are walked in ascending (name, triplet) order, so equal
// inputs always give the same plan.
func (c PlanComputer) Compute(ctx context.Context, closure Closure) (types.OrderedPlan, error) {
	run := &planRun{
		computer:   c,
		closure:    closure,
		state:      make([]int, len(closure.Nodes)),
		identities: make([]string, len(closure.Nodes)),
		plan: types.OrderedPlan{
			TargetTriplet: closure.Target.Name,
			HostTriplet:   closure.Host.Name,
			Actions:       make([]types.Action, 0, len(closure.Nodes)),
		},
	}
	roots := append([]int(nil), closure.Roots...)
	sort.Slice(roots, func(i, j int) bool {
		return lessNode(closure.Nodes[roots[i]], closure.Nodes[roots[j]])
	})
	for _, root := range roots {
		if err := run.visit(ctx, root); err != nil {
			return types.OrderedPlan{}, err
		}
	}
	log.Ctx(ctx).Debug().Int("actions", len(run.plan.Actions)).Msg("plan computed")
	return run.plan, nil
}

func lessNode(a ClosureNode, b ClosureNode) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Triplet.Name < b.Triplet.Name
}

func (r *planRun) visit(ctx context.Context, idx int) error {
	switch r.state[idx] {
	case visitBlack:
		return nil
	case visitGray:
		return r.cycleError(idx)
	}
	r.state[idx] = visitGray
	r.stack = append(r.stack, idx)
	node := r.closure.Nodes[idx]
	for _, dep := range node.Edges {
		if err := r.visit(ctx, dep); err != nil {
			return err
		}
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.state[idx] = visitBlack

	action, err := r.action(node)
	if err != nil {
		return err
	}
	r.identities[idx] = action.Identity
	r.plan.Actions = append(r.plan.Actions, action)
	log.Ctx(ctx).Debug().
		Str("action", action.Spec()).
		Str("version", action.Version.String()).
		Str("classification", string(action.Classification)).
		Str("identity", action.Identity).
		Msg("planned action")
	return nil
}

func (r *planRun) action(node ClosureNode) (types.Action, error) {
	action := types.Action{
		Name:      node.Name,
		Version:   node.Version,
		Triplet:   node.Triplet.Name,
		Features:  append([]string(nil), node.Features...),
		Requested: node.Requested,
	}
	for _, dep := range node.Edges {
		depNode := r.closure.Nodes[dep]
		action.Dependencies = append(action.Dependencies, depNode.Key())
		action.DependencyIdentities = append(action.DependencyIdentities, r.identities[dep])
	}
	action.Identity = ContentIdentity(node, action.DependencyIdentities)

	action.Classification = types.ClassificationNeedsBuild
	if r.computer.Installed == nil {
		return action, nil
	}
	installed, ok, err := r.computer.Installed.InstalledIdentity(node.Name, node.Triplet.Name)
	if err != nil {
		return types.Action{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to query installed state for %s", node.Key())).
			WithCause(err)
	}
	switch {
	case !ok:
	case installed == action.Identity:
		action.Classification = types.ClassificationAlreadySatisfied
	default:
		action.Replaces = installed
	}
	return action, nil
}

func (r *planRun) cycleError(idx int) error {
	start := 0
	for i, entry := range r.stack {
		if entry == idx {
			start = i
			break
		}
	}
	var chain []string
	for _, entry := range r.stack[start:] {
		chain = append(chain, r.closure.Nodes[entry].Key())
	}
	node := r.closure.Nodes[idx]
	chain = append(chain, node.Key())
	e := newResolutionError(ErrDependencyCycle, node.Name, node.Triplet.Name,
		fmt.Sprintf("dependency cycle through %s", node.Key()))
	e.Chain = chain
	return e
}

// ContentIdentity is the SHA-256 of a canonical rendering of everything
// that determines a build's output. Features and dependency identities
// are sorted so that traversal order never leaks into the digest.
func ContentIdentity(node ClosureNode, dependencyIdentities []string) string {
	features := append([]string(nil), node.Features...)
	sort.Strings(features)
	deps := append([]string(nil), dependencyIdentities...)
	sort.Strings(deps)

	var builder strings.Builder
	writeField := func(key string, value string) {
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(value)
		builder.WriteString("\n")
	}
	writeField("name", node.Name)
	writeField("version", node.Version.Text)
	writeField("scheme", string(normalizedScheme(node.Version.Scheme)))
	writeField("port_version", strconv.Itoa(node.Version.PortVersion))
	writeField("triplet", node.Triplet.Identity())
	for _, feature := range features {
		writeField("feature", feature)
	}
	for _, dep := range deps {
		writeField("dependency", dep)
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}
