package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"portsmith/internal/types"
)

// ApplyBaseline reclassifies actions named in the exclusion set for
// their triplet. Order, identities and dependencies are left alone so
// skipped actions still feed their dependents' identities. The input
// plan is not modified.
func ApplyBaseline(plan types.OrderedPlan, exclusions types.ExclusionSet) types.OrderedPlan {
	out := plan
	out.Actions = make([]types.Action, len(plan.Actions))
	for i, action := range plan.Actions {
		action.Features = append([]string(nil), action.Features...)
		action.Dependencies = append([]string(nil), action.Dependencies...)
		action.DependencyIdentities = append([]string(nil), action.DependencyIdentities...)
		if state, ok := exclusions.Lookup(action.Triplet, action.Name); ok {
			switch state {
			case types.ExclusionSkip:
				action.Classification = types.ClassificationSkip
			case types.ExclusionFail:
				action.Classification = types.ClassificationExpectFail
			}
		}
		out.Actions[i] = action
	}
	return out
}

// ParseCIBaseline reads "port:triplet=state" lines. Blank lines and
// text after '#' are ignored.
func ParseCIBaseline(r io.Reader) (types.ExclusionSet, error) {
	set := types.ExclusionSet{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if hash := strings.Index(line, "#"); hash >= 0 {
			line = line[:hash]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		spec, state, ok := strings.Cut(line, "=")
		if !ok {
			return nil, ciBaselineError(lineNo, "expected port:triplet=state")
		}
		name, triplet, ok := strings.Cut(strings.TrimSpace(spec), ":")
		name = strings.TrimSpace(name)
		triplet = strings.TrimSpace(triplet)
		if !ok || name == "" || triplet == "" {
			return nil, ciBaselineError(lineNo, fmt.Sprintf("invalid port spec %q", strings.TrimSpace(spec)))
		}
		parsed := types.ExclusionState(strings.ToLower(strings.TrimSpace(state)))
		switch parsed {
		case types.ExclusionSkip, types.ExclusionFail, types.ExclusionPass:
		default:
			return nil, ciBaselineError(lineNo, fmt.Sprintf("unknown state %q", strings.TrimSpace(state)))
		}
		if set[triplet] == nil {
			set[triplet] = map[string]types.ExclusionState{}
		}
		if previous, dup := set[triplet][name]; dup && previous != parsed {
			return nil, ciBaselineError(lineNo, fmt.Sprintf("%s:%s listed as both %s and %s", name, triplet, previous, parsed))
		}
		set[triplet][name] = parsed
	}
	if err := scanner.Err(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read ci baseline").
			WithCause(err)
	}
	return set, nil
}

func ciBaselineError(line int, detail string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("ci baseline line %d: %s", line, detail))
}
