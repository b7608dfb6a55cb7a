package adapters

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"

	"portsmith/internal/core"
	"portsmith/internal/ports"
	"portsmith/internal/types"
)

type CIBaselineFileAdapter struct {
	FS   afero.Fs
	Path string
}

func NewCIBaselineFileAdapter(fs afero.Fs, path string) CIBaselineFileAdapter {
	return CIBaselineFileAdapter{FS: fs, Path: path}
}

// Exclusions parses the CI baseline file. No path means no exclusions.
func (a CIBaselineFileAdapter) Exclusions() (types.ExclusionSet, error) {
	if a.Path == "" {
		return types.ExclusionSet{}, nil
	}
	file, err := a.FS.Open(a.Path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("ci baseline not found: %s", a.Path)).
			WithCause(err)
	}
	defer file.Close()
	return core.ParseCIBaseline(file)
}

var _ ports.ExclusionSource = CIBaselineFileAdapter{}
