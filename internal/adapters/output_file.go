package adapters

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"portsmith/internal/ports"
	"portsmith/internal/types"
)

const (
	PlanFileName         = "plan.yaml"
	InstallOrderFileName = "install.order"
)

// PlanFileAdapter writes a plan to Dir as plan.yaml plus install.order,
// a line per action in build order.
type PlanFileAdapter struct {
	FS  afero.Fs
	Dir string
}

func NewPlanFileAdapter(fs afero.Fs, dir string) PlanFileAdapter {
	return PlanFileAdapter{FS: fs, Dir: dir}
}

func (a PlanFileAdapter) WritePlan(plan types.OrderedPlan) error {
	path, err := a.ensurePath(PlanFileName)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(plan)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode plan").
			WithCause(err)
	}
	if err := afero.WriteFile(a.FS, path, data, 0o644); err != nil {
		return writeError(path, err)
	}

	orderPath, err := a.ensurePath(InstallOrderFileName)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(a.FS, orderPath, []byte(InstallOrder(plan)), 0o644); err != nil {
		return writeError(orderPath, err)
	}
	return nil
}

// InstallOrder renders "spec version classification identity" lines.
func InstallOrder(plan types.OrderedPlan) string {
	var lines []string
	for _, action := range plan.Actions {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			action.Spec(), action.Version.String(), action.Classification, action.Identity))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func (a PlanFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := a.FS.MkdirAll(a.Dir, 0o755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

func writeError(path string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("failed to write %s", path)).
		WithCause(err)
}

var _ ports.PlanWriterPort = PlanFileAdapter{}
