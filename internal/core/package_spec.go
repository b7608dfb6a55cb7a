package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"portsmith/internal/shared"
	"portsmith/internal/types"
)

// ParsePackageSpec splits "name[feature,...]:triplet" into a Request.
// Both the feature list and the triplet are optional.
func ParsePackageSpec(raw string) (types.Request, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Request{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty package spec")
	}
	rest, triplet, hasTriplet := strings.Cut(raw, ":")
	if hasTriplet {
		triplet = strings.TrimSpace(triplet)
		if triplet == "" || strings.ContainsAny(triplet, "[]:") {
			return types.Request{}, invalidPackageSpec(raw)
		}
	}
	name := rest
	var features []string
	if open := strings.Index(rest, "["); open >= 0 {
		if !strings.HasSuffix(rest, "]") {
			return types.Request{}, invalidPackageSpec(raw)
		}
		name = rest[:open]
		for _, feature := range strings.Split(rest[open+1:len(rest)-1], ",") {
			feature = strings.TrimSpace(feature)
			if feature == "" {
				return types.Request{}, invalidPackageSpec(raw)
			}
			features = append(features, feature)
		}
	}
	name = shared.NormalizePortName(name)
	if name == "" || strings.ContainsAny(name, "[]") {
		return types.Request{}, invalidPackageSpec(raw)
	}
	return types.Request{Name: name, Features: features, Triplet: triplet}, nil
}

func invalidPackageSpec(raw string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid package spec: %s", raw))
}
