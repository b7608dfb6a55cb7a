package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"portsmith/internal/types"
)

func writeFile(t *testing.T, fs afero.Fs, path string, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

// seedWorkspace lays out a small ports tree, a baseline and a triplet
// directory under /ws.
func seedWorkspace(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/ws/ports/zlib/port.yaml", `
version: "1.3.1"
versions:
  - version: "1.2.13"
`)
	writeFile(t, fs, "/ws/ports/openssl/port.yaml", `
version: "3.2.0"
dependencies:
  - zlib
`)
	writeFile(t, fs, "/ws/ports/curl/port.yaml", `
version: "8.5.0"
default_features: [ssl]
dependencies:
  - zlib
features:
  - name: ssl
    dependencies:
      - openssl
`)
	writeFile(t, fs, "/ws/ports/cmake/port.yaml", `
version: "3.28.1"
`)
	writeFile(t, fs, "/ws/ports/fmt/port.yaml", `
version: "10.2.1"
dependencies:
  - name: cmake
    host: true
`)
	writeFile(t, fs, "/ws/baseline.yaml", `
default:
  zlib:
    baseline: "1.3.1"
`)
	writeFile(t, fs, "/ws/triplets/x64-linux-dyn.yaml", `
arch: x64
os: linux
linkage: dynamic
`)
	return fs
}

func testService(fs afero.Fs) Service {
	clock := time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)
	return Service{FS: fs, Clock: func() time.Time { return clock }}
}

func specs(plan types.OrderedPlan) []string {
	out := make([]string, 0, len(plan.Actions))
	for _, action := range plan.Actions {
		out = append(out, action.Spec())
	}
	return out
}

type recordedPlan struct {
	command string
	actions int
}

type fakeMetrics struct {
	plans    []recordedPlan
	failures []string
}

func (m *fakeMetrics) ObservePlan(command string, plan types.OrderedPlan, _ time.Duration) {
	m.plans = append(m.plans, recordedPlan{command: command, actions: len(plan.Actions)})
}

func (m *fakeMetrics) ObserveFailure(command string, kind string) {
	m.failures = append(m.failures, command+":"+kind)
}

func (m *fakeMetrics) Flush() error { return nil }
