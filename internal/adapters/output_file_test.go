package adapters

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portsmith/internal/types"
)

func samplePlan() types.OrderedPlan {
	return types.OrderedPlan{
		TargetTriplet: "x64-linux",
		HostTriplet:   "x64-linux",
		Actions: []types.Action{
			{
				Name:           "zlib",
				Version:        types.Version{Text: "1.3.1"},
				Triplet:        "x64-linux",
				Classification: types.ClassificationAlreadySatisfied,
				Identity:       "111",
			},
			{
				Name:                 "curl",
				Version:              types.Version{Text: "8.5.0", PortVersion: 1},
				Triplet:              "x64-linux",
				Features:             []string{"ssl"},
				Classification:       types.ClassificationNeedsBuild,
				Identity:             "222",
				Dependencies:         []string{"zlib:x64-linux"},
				DependencyIdentities: []string{"111"},
				Requested:            true,
			},
		},
	}
}

func TestPlanFileAdapterWritesPlanAndOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	adapter := NewPlanFileAdapter(fs, "/out")
	require.NoError(t, adapter.WritePlan(samplePlan()))

	order, err := afero.ReadFile(fs, filepath.Join("/out", InstallOrderFileName))
	require.NoError(t, err)
	want := "zlib:x64-linux 1.3.1 already-satisfied 111\ncurl[ssl]:x64-linux 8.5.0#1 needs-build 222\n"
	if diff := cmp.Diff(want, string(order)); diff != "" {
		t.Fatalf("unexpected install.order (-want +got):\n%s", diff)
	}

	got, err := NewPlanReaderAdapter(fs).ReadPlan(filepath.Join("/out", PlanFileName))
	require.NoError(t, err)
	if diff := cmp.Diff(samplePlan(), got); diff != "" {
		t.Fatalf("plan did not survive a write and read (-want +got):\n%s", diff)
	}
}

func TestPlanFileAdapterRequiresDir(t *testing.T) {
	err := NewPlanFileAdapter(afero.NewMemMapFs(), "").WritePlan(samplePlan())
	require.Error(t, err)
}

func TestInstallOrderEmptyPlan(t *testing.T) {
	assert.Equal(t, "", InstallOrder(types.OrderedPlan{TargetTriplet: "x64-linux"}))
}
