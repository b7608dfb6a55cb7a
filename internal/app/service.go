package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"

	"portsmith/internal/core"
	"portsmith/internal/ports"
	"portsmith/internal/types"
)

// Service runs the command use cases. Adapters are built per request
// from the paths in the request, all on FS.
type Service struct {
	FS      afero.Fs
	Metrics ports.MetricsPort
	Clock   func() time.Time
}

func NewService() Service {
	return Service{
		FS:    afero.NewOsFs(),
		Clock: time.Now,
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s Service) observePlan(command string, plan types.OrderedPlan, started time.Time) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.ObservePlan(command, plan, s.now().Sub(started))
}

func (s Service) observeFailure(command string, err error) {
	if s.Metrics == nil || err == nil {
		return
	}
	s.Metrics.ObserveFailure(command, FailureKind(err))
}

// FailureKind names an error for metrics: the resolution error kind
// when there is one, otherwise the errbuilder code.
func FailureKind(err error) string {
	var resolution *core.ResolutionError
	if errors.As(err, &resolution) {
		return string(resolution.Kind)
	}
	return fmt.Sprint(errbuilder.CodeOf(err))
}
