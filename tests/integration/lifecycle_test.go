package integration

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portsmith/internal/app"
	"portsmith/internal/types"
	"portsmith/tests/testutil"
)

// TestProjectLifecycle exercises the workflow a user follows:
//
//	validate ports -> resolve -> inspect -> install-record -> resolve again
func TestProjectLifecycle(t *testing.T) {
	dir := t.TempDir()
	installed := filepath.Join(dir, "state", "installed.yaml")
	outDir := filepath.Join(dir, "out")
	service := app.NewService()

	validated, err := service.Validate(t.Context(), app.ValidateRequest{
		PortsDir:     testutil.Fixture(t, "ports"),
		OverlayPorts: []string{testutil.Fixture(t, "overlay")},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, validated.Validated)

	req := app.ResolveRequest{
		ProjectPath:   testutil.Fixture(t, "portsmith.project.yaml"),
		InstalledPath: installed,
		OutputDir:     outDir,
	}
	first, err := service.Resolve(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, "sample-app", first.ProjectName)

	want := []string{
		"cmake:x64-linux",
		"nghttp2:x64-linux",
		"zlib:x64-linux",
		"openssl:x64-linux",
		"curl[http2,ssl]:x64-linux",
		"fmt:x64-linux",
		"spdlog:x64-linux",
	}
	if diff := cmp.Diff(want, testutil.Specs(first.Plan)); diff != "" {
		t.Fatalf("unexpected plan (-want +got):\n%s", diff)
	}
	versions := map[string]string{}
	for _, action := range first.Plan.Actions {
		versions[action.Name] = action.Version.String()
	}
	assert.Equal(t, "1.2.13#2", versions["zlib"])
	assert.Equal(t, "10.2.1", versions["fmt"])
	assert.Equal(t, "8.5.0#1", versions["curl"])

	inspected, err := service.Inspect(app.InspectRequest{PlanPath: filepath.Join(outDir, "plan.yaml")})
	require.NoError(t, err)
	assert.Equal(t, 7, inspected.Summary[types.ClassificationNeedsBuild])
	assert.Equal(t, []string{"curl[http2,ssl]:x64-linux", "fmt:x64-linux", "spdlog:x64-linux"}, inspected.Requested)

	recorded, err := service.InstallRecord(t.Context(), app.InstallRecordRequest{
		PlanPath:      filepath.Join(outDir, "plan.yaml"),
		InstalledPath: installed,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, recorded.Recorded)

	second, err := service.Resolve(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, 7, second.Plan.Summary()[types.ClassificationAlreadySatisfied])

	req.OverlayPorts = []string{testutil.Fixture(t, "overlay")}
	third, err := service.Resolve(t.Context(), req)
	require.NoError(t, err)
	rebuilt := map[string]bool{}
	for _, action := range third.Plan.Actions {
		if action.Classification == types.ClassificationNeedsBuild {
			rebuilt[action.Name] = action.Replaces != ""
		}
	}
	// the patched fmt changes its own identity and that of its dependent
	assert.Equal(t, map[string]bool{"fmt": true, "spdlog": true}, rebuilt)
}

func TestCrossTargetCIRun(t *testing.T) {
	service := app.NewService()
	result, err := service.CI(t.Context(), app.CIRequest{
		ResolveRequest: app.ResolveRequest{
			Packages:     []string{"curl"},
			PortsDir:     testutil.Fixture(t, "ports"),
			TripletDirs:  []string{testutil.Fixture(t, "triplets")},
			BaselinePath: testutil.Fixture(t, "baseline.yaml"),
			Triplet:      "riscv64-linux",
			HostTriplet:  "x64-linux",
		},
		CIBaselinePath: testutil.Fixture(t, "ci.baseline.txt"),
	})
	require.NoError(t, err)

	want := []string{
		"cmake:x64-linux",
		"zlib:riscv64-linux",
		"openssl:riscv64-linux",
		"curl[ssl]:riscv64-linux",
	}
	if diff := cmp.Diff(want, testutil.Specs(result.Plan)); diff != "" {
		t.Fatalf("unexpected plan (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"openssl:riscv64-linux"}, result.ExpectedFailures)
	assert.Empty(t, result.Skipped)
}
