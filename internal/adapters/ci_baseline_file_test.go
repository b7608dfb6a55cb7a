package adapters

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"portsmith/internal/types"
)

func TestCIBaselineFileAdapter(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/ci/baseline.txt", "# known failures\nopenssl:x64-windows=fail\nqt:arm64-linux = skip\n")

	got, err := NewCIBaselineFileAdapter(fs, "/ci/baseline.txt").Exclusions()
	require.NoError(t, err)
	want := types.ExclusionSet{
		"x64-windows": {"openssl": types.ExclusionFail},
		"arm64-linux": {"qt": types.ExclusionSkip},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected exclusions (-want +got):\n%s", diff)
	}

	empty, err := NewCIBaselineFileAdapter(fs, "").Exclusions()
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = NewCIBaselineFileAdapter(fs, "/ci/missing.txt").Exclusions()
	require.Error(t, err)
}
