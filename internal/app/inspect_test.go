package app

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portsmith/internal/types"
)

func TestInspectSummarizesPlan(t *testing.T) {
	fs := seedWorkspace(t)
	service := testService(fs)
	_, err := service.Resolve(t.Context(), ResolveRequest{
		Packages:  []string{"curl", "fmt"},
		PortsDir:  "/ws/ports",
		Triplet:   "x64-linux",
		OutputDir: "/ws/out",
	})
	require.NoError(t, err)

	result, err := service.Inspect(InspectRequest{PlanPath: "/ws/out/plan.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "x64-linux", result.TargetTriplet)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, map[types.Classification]int{types.ClassificationNeedsBuild: 5}, result.Summary)
	if diff := cmp.Diff([]string{"curl[ssl]:x64-linux", "fmt:x64-linux"}, result.Requested); diff != "" {
		t.Fatalf("unexpected requested actions (-want +got):\n%s", diff)
	}
	assert.Empty(t, result.Replacing)
}

func TestInspectRequiresPlan(t *testing.T) {
	_, err := testService(seedWorkspace(t)).Inspect(InspectRequest{})
	require.Error(t, err)
	_, err = testService(seedWorkspace(t)).Inspect(InspectRequest{PlanPath: "/ws/out/plan.yaml"})
	require.Error(t, err)
}
