package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Precedence decides how a requester's minimum version interacts with
// an override pin. Baseline pins are always checked against minimums.
type Precedence string

const (
	// PrecedenceConstraintChecked uses the override when present and
	// still fails resolution if a minimum is above it.
	PrecedenceConstraintChecked Precedence = "constraint-checked"

	// PrecedenceOverrideWins takes an override unconditionally and skips
	// the minimum check for that package.
	PrecedenceOverrideWins Precedence = "override-wins"
)

const DefaultPrecedence = PrecedenceConstraintChecked

func ParsePrecedence(value string) (Precedence, error) {
	switch Precedence(strings.ToLower(strings.TrimSpace(value))) {
	case "", PrecedenceConstraintChecked:
		return PrecedenceConstraintChecked, nil
	case PrecedenceOverrideWins:
		return PrecedenceOverrideWins, nil
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown version precedence: %s", value))
	}
}

// ChecksOverride reports whether a minimum must be validated against an
// override pin under this policy.
func (p Precedence) ChecksOverride() bool {
	return p != PrecedenceOverrideWins
}
