package adapters

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestPlanReaderAdapterRejectsInvalidPlans(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "actions: ["},
		{name: "no target", content: "actions: []\n"},
		{
			name: "missing identity",
			content: `target_triplet: x64-linux
actions:
  - name: zlib
    triplet: x64-linux
`,
		},
		{
			name: "dependency out of order",
			content: `target_triplet: x64-linux
actions:
  - name: curl
    triplet: x64-linux
    identity: "2"
    dependencies: [zlib:x64-linux]
    dependency_identities: ["1"]
  - name: zlib
    triplet: x64-linux
    identity: "1"
`,
		},
		{
			name: "mismatched identities",
			content: `target_triplet: x64-linux
actions:
  - name: zlib
    triplet: x64-linux
    identity: "1"
  - name: curl
    triplet: x64-linux
    identity: "2"
    dependencies: [zlib:x64-linux]
`,
		},
		{
			name: "duplicate action",
			content: `target_triplet: x64-linux
actions:
  - name: zlib
    triplet: x64-linux
    identity: "1"
  - name: zlib
    triplet: x64-linux
    identity: "1"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/out/plan.yaml", tt.content)
			_, err := NewPlanReaderAdapter(fs).ReadPlan("/out/plan.yaml")
			require.Error(t, err)
		})
	}

	_, err := NewPlanReaderAdapter(afero.NewMemMapFs()).ReadPlan("/out/plan.yaml")
	require.Error(t, err)
}
