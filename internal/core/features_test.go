package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portsmith/internal/types"
)

func boolPtr(v bool) *bool {
	return &v
}

func featurefulManifest() types.SourceControlFile {
	return types.SourceControlFile{
		Name:            "curl",
		Version:         types.Version{Text: "8.5.0"},
		DefaultFeatures: []string{"ssl"},
		Dependencies:    []types.Dependency{{Name: "zlib"}},
		Features: []types.FeatureParagraph{
			{Name: "ssl", Dependencies: []types.Dependency{
				{Name: "openssl", Platform: "!windows"},
				{Name: "schannel", Platform: "windows"},
			}},
			{Name: "http2", Dependencies: []types.Dependency{
				{Name: "nghttp2"},
				{Name: "curl", Features: []string{"ssl"}},
			}},
			{Name: "brotli", Dependencies: []types.Dependency{
				{Name: "brotli", DefaultFeatures: boolPtr(false)},
			}},
			{Name: "winonly", Supports: "windows"},
		},
	}
}

func names(deps []types.Dependency) []string {
	out := make([]string, 0, len(deps))
	for _, dep := range deps {
		out = append(out, dep.Name)
	}
	return out
}

func TestResolveFeatureSetDefaults(t *testing.T) {
	facts := linuxFacts()
	tests := []struct {
		name         string
		requested    []string
		wantDefault  bool
		wantFeatures []string
		wantDeps     []string
	}{
		{name: "defaults wanted", wantDefault: true, wantFeatures: []string{"ssl"}, wantDeps: []string{"openssl", "zlib"}},
		{name: "defaults not wanted", wantDefault: false, wantFeatures: []string{}, wantDeps: []string{"zlib"}},
		{name: "core suppresses defaults", requested: []string{"core"}, wantDefault: true, wantFeatures: []string{}, wantDeps: []string{"zlib"}},
		{name: "default forces defaults", requested: []string{"default"}, wantDefault: false, wantFeatures: []string{"ssl"}, wantDeps: []string{"openssl", "zlib"}},
		{
			name:         "feature pulls own feature",
			requested:    []string{"core", "http2"},
			wantDefault:  true,
			wantFeatures: []string{"http2", "ssl"},
			wantDeps:     []string{"nghttp2", "openssl", "zlib"},
		},
		{
			name:         "star selects everything",
			requested:    []string{"*"},
			wantFeatures: []string{"brotli", "http2", "ssl", "winonly"},
			wantDeps:     []string{"brotli", "nghttp2", "openssl", "zlib"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveFeatureSet(featurefulManifest(), tt.requested, tt.wantDefault, facts, NewQualifierCache())
			require.NoError(t, err)
			if diff := cmp.Diff(tt.wantFeatures, got.Features); diff != "" {
				t.Fatalf("unexpected features (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantDeps, names(got.Dependencies)); diff != "" {
				t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveFeatureSetTransitiveSelfFeature(t *testing.T) {
	manifest := types.SourceControlFile{
		Name:    "B",
		Version: types.Version{Text: "1.0"},
		Features: []types.FeatureParagraph{
			{Name: "x", Dependencies: []types.Dependency{{Name: "B", Features: []string{"y"}}}},
			{Name: "y", Dependencies: []types.Dependency{{Name: "zlib"}}},
		},
	}
	got, err := ResolveFeatureSet(manifest, []string{"x"}, true, linuxFacts(), nil)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"x", "y"}, got.Features); diff != "" {
		t.Fatalf("unexpected features (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]types.Dependency{{Name: "zlib"}}, got.Dependencies); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
}

func TestResolveFeatureSetFeatureNotFound(t *testing.T) {
	_, err := ResolveFeatureSet(featurefulManifest(), []string{"gopher"}, true, linuxFacts(), nil)
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, ErrFeatureNotFound, resErr.Kind)
	assert.Equal(t, "curl", resErr.Package)
	assert.Equal(t, "gopher", resErr.Feature)
}

func TestResolveFeatureSetCircularRequirement(t *testing.T) {
	manifest := types.SourceControlFile{
		Name:    "B",
		Version: types.Version{Text: "1.0"},
		Features: []types.FeatureParagraph{
			{Name: "x", Dependencies: []types.Dependency{{Name: "B", Features: []string{"y"}}}},
			{Name: "y", Dependencies: []types.Dependency{{Name: "B", Features: []string{"x"}}}},
		},
	}
	_, err := ResolveFeatureSet(manifest, []string{"x"}, true, linuxFacts(), nil)
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, ErrCircularFeatureRequirement, resErr.Kind)
	if diff := cmp.Diff([]string{"B[x]", "B[y]", "B[x]"}, resErr.Chain); diff != "" {
		t.Fatalf("unexpected chain (-want +got):\n%s", diff)
	}
}

func TestResolveFeatureSetDeduplicatesDependencies(t *testing.T) {
	manifest := types.SourceControlFile{
		Name:         "app",
		Version:      types.Version{Text: "1.0"},
		Dependencies: []types.Dependency{{Name: "zlib", Features: []string{"a"}}},
		Features: []types.FeatureParagraph{
			{Name: "extra", Dependencies: []types.Dependency{
				{Name: "zlib", Features: []string{"b", "a"}, DefaultFeatures: boolPtr(false)},
				{Name: "zlib", Host: true},
				{Name: "zlib", Minimum: minimum("1.3")},
			}},
		},
	}
	got, err := ResolveFeatureSet(manifest, []string{"extra"}, false, linuxFacts(), nil)
	require.NoError(t, err)
	want := []types.Dependency{
		{Name: "zlib", Features: []string{"a", "b"}},
		{Name: "zlib", Minimum: minimum("1.3")},
		{Name: "zlib", Host: true},
	}
	if diff := cmp.Diff(want, got.Dependencies); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
}

func TestResolveFeatureSetReportsUnsupportedFeatures(t *testing.T) {
	got, err := ResolveFeatureSet(featurefulManifest(), []string{"winonly"}, false, linuxFacts(), nil)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"winonly"}, got.Unsupported); diff != "" {
		t.Fatalf("unexpected unsupported features (-want +got):\n%s", diff)
	}
}
