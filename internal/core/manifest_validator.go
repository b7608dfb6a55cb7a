package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portsmith/internal/types"
)

type ManifestValidator struct{}

var reservedFeatureNames = map[string]struct{}{
	types.FeatureCore:    {},
	types.FeatureDefault: {},
	types.FeatureAll:     {},
}

func NewManifestValidator() ManifestValidator {
	return ManifestValidator{}
}

// ValidateManifest checks a port manifest for the defects that would
// otherwise only surface halfway through a resolution pass.
func (v ManifestValidator) ValidateManifest(ctx context.Context, manifest types.SourceControlFile) error {
	assert.NotEmpty(ctx, manifest.Name, "manifest name must be set")
	if strings.TrimSpace(manifest.Version.Text) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("port %s has no version", manifest.Name))
	}
	for _, version := range manifest.DeclaredVersions() {
		if _, err := ParseVersion(version.Text, version.Scheme, version.PortVersion); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("port %s declares an invalid version", manifest.Name)).
				WithCause(err)
		}
	}
	if err := validateQualifier(manifest.Name, "supports", manifest.Supports); err != nil {
		return err
	}
	if err := validateDependencies(manifest.Name, manifest.Dependencies); err != nil {
		return err
	}
	seen := map[string]struct{}{}
	for _, feature := range manifest.Features {
		if err := validateFeature(manifest.Name, feature); err != nil {
			return err
		}
		if _, ok := seen[feature.Name]; ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("port %s declares feature %s twice", manifest.Name, feature.Name))
		}
		seen[feature.Name] = struct{}{}
	}
	for _, name := range manifest.DefaultFeatures {
		if _, ok := seen[name]; !ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("port %s lists unknown default feature %s", manifest.Name, name))
		}
	}
	log.Ctx(ctx).Debug().Str("port", manifest.Name).Msg("manifest validated")
	return nil
}

func validateFeature(port string, feature types.FeatureParagraph) error {
	if strings.TrimSpace(feature.Name) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("port %s has a feature without a name", port))
	}
	if _, ok := reservedFeatureNames[feature.Name]; ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("port %s uses reserved feature name %q", port, feature.Name))
	}
	if err := validateQualifier(port, "feature "+feature.Name+" supports", feature.Supports); err != nil {
		return err
	}
	return validateDependencies(port, feature.Dependencies)
}

func validateDependencies(port string, deps []types.Dependency) error {
	for _, dep := range deps {
		if strings.TrimSpace(dep.Name) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("port %s has a dependency without a name", port))
		}
		if err := validateQualifier(port, "dependency "+dep.Name+" platform", dep.Platform); err != nil {
			return err
		}
		if dep.Minimum != nil {
			if _, err := ParseVersion(dep.Minimum.Text, dep.Minimum.Scheme, dep.Minimum.PortVersion); err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("port %s: dependency %s has an invalid minimum version", port, dep.Name)).
					WithCause(err)
			}
		}
	}
	return nil
}

func validateQualifier(port string, field string, expr string) error {
	if _, err := ParseQualifier(expr); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("port %s: %s", port, field)).
			WithCause(err)
	}
	return nil
}
