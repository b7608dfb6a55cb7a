package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"portsmith/internal/adapters"
	"portsmith/internal/core"
	"portsmith/internal/shared"
)

// Validate checks every port manifest in the tree (or the named subset)
// and reports each failing port. A non-empty failure list is also
// returned as an error.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	if strings.TrimSpace(req.PortsDir) == "" {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("ports directory is required")
	}
	tree := adapters.NewPortTreeAdapter(s.FS, req.PortsDir, req.OverlayPorts...)
	names := req.Ports
	if len(names) == 0 {
		all, err := tree.PortNames()
		if err != nil {
			return ValidateResult{}, err
		}
		names = all
	}

	validator := core.NewManifestValidator()
	result := ValidateResult{}
	for _, name := range names {
		manifest, ok, err := tree.GetManifest(name)
		if err != nil {
			return ValidateResult{}, err
		}
		if !ok {
			return ValidateResult{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("port %s not found", shared.NormalizePortName(name)))
		}
		result.Validated++
		if err := validator.ValidateManifest(ctx, manifest); err != nil {
			result.Failures = append(result.Failures, ValidateFailure{Port: manifest.Name, Message: err.Error()})
		}
	}
	if len(result.Failures) > 0 {
		return result, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%d of %d ports failed validation", len(result.Failures), result.Validated))
	}
	return result, nil
}
