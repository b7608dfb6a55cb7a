package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"portsmith/internal/types"
)

func TestManifestValidatorValidateManifestCases(t *testing.T) {
	validator := NewManifestValidator()

	tests := []struct {
		name    string
		build   func() types.SourceControlFile
		wantErr bool
	}{
		{
			name:    "valid manifest",
			build:   featurefulManifest,
			wantErr: false,
		},
		{
			name: "missing version",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.Version = types.Version{}
				return m
			},
			wantErr: true,
		},
		{
			name: "version invalid for scheme",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.Version = types.Version{Text: "8.5", Scheme: types.VersionSchemeSemver}
				return m
			},
			wantErr: true,
		},
		{
			name: "extra release invalid under manifest scheme",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.Version = types.Version{Text: "2024-01-01", Scheme: types.VersionSchemeDate}
				m.Versions = []types.Version{{Text: "8.4.0"}}
				return m
			},
			wantErr: true,
		},
		{
			name: "duplicate feature",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.Features = append(m.Features, types.FeatureParagraph{Name: "ssl"})
				return m
			},
			wantErr: true,
		},
		{
			name: "reserved feature name",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.Features = append(m.Features, types.FeatureParagraph{Name: "core"})
				return m
			},
			wantErr: true,
		},
		{
			name: "unknown default feature",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.DefaultFeatures = []string{"gopher"}
				return m
			},
			wantErr: true,
		},
		{
			name: "bad supports expression",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.Supports = "linux &"
				return m
			},
			wantErr: true,
		},
		{
			name: "bad dependency platform",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.Features[0].Dependencies[0].Platform = "(windows"
				return m
			},
			wantErr: true,
		},
		{
			name: "dependency without name",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.Dependencies = append(m.Dependencies, types.Dependency{})
				return m
			},
			wantErr: true,
		},
		{
			name: "bad dependency minimum",
			build: func() types.SourceControlFile {
				m := featurefulManifest()
				m.Dependencies[0].Minimum = &types.Version{Text: "1..2"}
				return m
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateManifest(t.Context(), tt.build())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
