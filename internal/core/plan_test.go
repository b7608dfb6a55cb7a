package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portsmith/internal/types"
)

func identityNode() ClosureNode {
	return ClosureNode{
		Name:     "curl",
		Triplet:  x64Linux,
		Version:  types.Version{Text: "8.5.0", Scheme: types.VersionSchemeRelaxed},
		Features: []string{"ssl", "http2"},
	}
}

func TestContentIdentityIsOrderIndependent(t *testing.T) {
	a := identityNode()
	b := identityNode()
	b.Features = []string{"http2", "ssl"}

	idA := ContentIdentity(a, []string{"aaa", "bbb"})
	idB := ContentIdentity(b, []string{"bbb", "aaa"})
	assert.Equal(t, idA, idB)
	assert.Len(t, idA, 64)
}

func TestContentIdentityChangesWithInputs(t *testing.T) {
	base := ContentIdentity(identityNode(), []string{"aaa"})

	tests := []struct {
		name   string
		mutate func(*ClosureNode) []string
	}{
		{name: "port version", mutate: func(n *ClosureNode) []string {
			n.Version.PortVersion = 1
			return []string{"aaa"}
		}},
		{name: "version text", mutate: func(n *ClosureNode) []string {
			n.Version.Text = "8.5.1"
			return []string{"aaa"}
		}},
		{name: "triplet facts", mutate: func(n *ClosureNode) []string {
			n.Triplet.Flags = map[string]string{"lto": "true"}
			return []string{"aaa"}
		}},
		{name: "features", mutate: func(n *ClosureNode) []string {
			n.Features = []string{"ssl"}
			return []string{"aaa"}
		}},
		{name: "dependency identity", mutate: func(n *ClosureNode) []string {
			return []string{"aab"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := identityNode()
			deps := tt.mutate(&node)
			assert.NotEqual(t, base, ContentIdentity(node, deps))
		})
	}
}

func TestPlanComputerOrdersDependenciesFirst(t *testing.T) {
	closure := Closure{
		Target: x64Linux,
		Host:   x64Linux,
		Nodes: []ClosureNode{
			{Name: "app", Triplet: x64Linux, Version: types.Version{Text: "1.0"}, Edges: []int{2, 1}, Requested: true},
			{Name: "zlib", Triplet: x64Linux, Version: types.Version{Text: "1.3"}},
			{Name: "png", Triplet: x64Linux, Version: types.Version{Text: "1.6"}, Edges: []int{1}},
		},
		Roots: []int{0},
	}
	plan, err := NewPlanComputer(nil).Compute(t.Context(), closure)
	require.NoError(t, err)

	var order []string
	for _, action := range plan.Actions {
		order = append(order, action.Name)
		assert.Equal(t, types.ClassificationNeedsBuild, action.Classification)
	}
	if diff := cmp.Diff([]string{"zlib", "png", "app"}, order); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	app := plan.Actions[2]
	assert.True(t, app.Requested)
	if diff := cmp.Diff([]string{"png:x64-linux", "zlib:x64-linux"}, app.Dependencies); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{plan.Actions[1].Identity, plan.Actions[0].Identity}, app.DependencyIdentities); diff != "" {
		t.Fatalf("unexpected dependency identities (-want +got):\n%s", diff)
	}
}

func TestPlanComputerClassifiesAgainstInstalledState(t *testing.T) {
	closure := Closure{
		Target: x64Linux,
		Host:   x64Linux,
		Nodes: []ClosureNode{
			{Name: "zlib", Triplet: x64Linux, Version: types.Version{Text: "1.3"}},
			{Name: "png", Triplet: x64Linux, Version: types.Version{Text: "1.6"}},
		},
		Roots: []int{0, 1},
	}
	zlibID := ContentIdentity(closure.Nodes[0], nil)
	installed := testInstalled{
		"zlib:x64-linux": zlibID,
		"png:x64-linux":  "stale",
	}
	plan, err := NewPlanComputer(installed).Compute(t.Context(), closure)
	require.NoError(t, err)

	png, ok := findAction(plan, "png", "x64-linux")
	require.True(t, ok)
	assert.Equal(t, types.ClassificationNeedsBuild, png.Classification)
	assert.Equal(t, "stale", png.Replaces)

	zlib, ok := findAction(plan, "zlib", "x64-linux")
	require.True(t, ok)
	assert.Equal(t, types.ClassificationAlreadySatisfied, zlib.Classification)
	assert.Empty(t, zlib.Replaces)

	// Roots are visited by name, not by closure position.
	assert.Equal(t, "png", plan.Actions[0].Name)
}

func TestPlanComputerDetectsCycle(t *testing.T) {
	closure := Closure{
		Target: x64Linux,
		Host:   x64Linux,
		Nodes: []ClosureNode{
			{Name: "a", Triplet: x64Linux, Edges: []int{1}},
			{Name: "b", Triplet: x64Linux, Edges: []int{2}},
			{Name: "c", Triplet: x64Linux, Edges: []int{1}},
		},
		Roots: []int{0},
	}
	_, err := NewPlanComputer(nil).Compute(t.Context(), closure)
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, ErrDependencyCycle, resErr.Kind)
	if diff := cmp.Diff([]string{"b:x64-linux", "c:x64-linux", "b:x64-linux"}, resErr.Chain); diff != "" {
		t.Fatalf("unexpected chain (-want +got):\n%s", diff)
	}
}
