package adapters

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portsmith/internal/types"
)

func TestProjectFileAdapterLoadsProject(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/work/portsmith.project.yaml", `
name: demo
baseline: lts
dependencies:
  - "curl[ssl,http2]"
  - zlib:arm64-linux
  - name: fmt
    version_min:
      version: "10.0.0"
overrides:
  - name: zlib
    version: "1.2.13"
defaults:
  triplet: x64-linux
  ports: ./ports
`)
	project, err := NewProjectFileAdapter(fs).LoadProject("/work/portsmith.project.yaml")
	require.NoError(t, err)

	assert.Equal(t, "demo", project.Name)
	assert.Equal(t, "lts", project.BaselineName)
	assert.Equal(t, "x64-linux", project.Defaults.Triplet)
	assert.Equal(t, "./ports", project.Defaults.Ports)
	want := []types.Request{
		{Name: "curl", Features: []string{"ssl", "http2"}},
		{Name: "zlib", Triplet: "arm64-linux"},
		{Name: "fmt", Minimum: &types.Version{Text: "10.0.0"}},
	}
	if diff := cmp.Diff(want, project.Dependencies); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]types.Override{{Name: "zlib", Version: "1.2.13"}}, project.Overrides); diff != "" {
		t.Fatalf("unexpected overrides (-want +got):\n%s", diff)
	}
}

func TestProjectFileAdapterErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no dependencies", content: "name: demo\n"},
		{name: "bad spec", content: "dependencies: [\"curl[ssl\"]\n"},
		{name: "unnamed", content: "dependencies:\n  - features: [ssl]\n"},
		{name: "duplicate", content: "dependencies: [zlib, zlib]\n"},
		{name: "invalid yaml", content: "dependencies: {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/work/project.yaml", tt.content)
			_, err := NewProjectFileAdapter(fs).LoadProject("/work/project.yaml")
			require.Error(t, err)
		})
	}

	_, err := NewProjectFileAdapter(afero.NewMemMapFs()).LoadProject("/work/missing.yaml")
	require.Error(t, err)
}
