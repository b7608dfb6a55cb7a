package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

type ErrorKind string

const (
	ErrUnsatisfiableVersion       ErrorKind = "unsatisfiable-version"
	ErrVersionConflict            ErrorKind = "version-conflict"
	ErrFeatureNotFound            ErrorKind = "feature-not-found"
	ErrCircularFeatureRequirement ErrorKind = "circular-feature-requirement"
	ErrDependencyCycle            ErrorKind = "dependency-cycle"
	ErrManifestNotFound           ErrorKind = "manifest-not-found"
	ErrUnsupported                ErrorKind = "unsupported"
)

// ResolutionError is the structured form of every error that aborts a
// resolution pass. Chain lists the packages (or features) leading to
// the failure, outermost first.
type ResolutionError struct {
	Kind     ErrorKind
	Package  string
	Triplet  string
	Feature  string
	Chain    []string
	Versions []string
	Message  string
	cause    error
}

func (e *ResolutionError) Error() string {
	var builder strings.Builder
	builder.WriteString(e.Message)
	if len(e.Chain) > 0 {
		builder.WriteString(" (chain: ")
		builder.WriteString(strings.Join(e.Chain, " -> "))
		builder.WriteString(")")
	}
	return builder.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.cause
}

// Code maps the error kind onto the errbuilder code space used by the
// rest of the tool.
func (e *ResolutionError) Code() errbuilder.ErrCode {
	switch e.Kind {
	case ErrManifestNotFound, ErrFeatureNotFound:
		return errbuilder.CodeNotFound
	case ErrUnsupported:
		return errbuilder.CodePermissionDenied
	default:
		return errbuilder.CodeFailedPrecondition
	}
}

func newResolutionError(kind ErrorKind, pkg string, triplet string, msg string) *ResolutionError {
	e := &ResolutionError{
		Kind:    kind,
		Package: pkg,
		Triplet: triplet,
		Message: msg,
	}
	e.cause = errbuilder.New().
		WithCode(e.Code()).
		WithMsg(msg)
	return e
}

func unsatisfiableVersionError(pkg string, want string, wantScheme string, got string, gotScheme string) *ResolutionError {
	e := newResolutionError(ErrUnsatisfiableVersion, pkg, "", fmt.Sprintf(
		"version constraint %s (%s) on %s cannot be satisfied by selected version %s (%s)",
		want, wantScheme, pkg, got, gotScheme,
	))
	e.Versions = []string{want, got}
	return e
}
