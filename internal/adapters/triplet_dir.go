package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"portsmith/internal/ports"
	"portsmith/internal/types"
)

// BuiltinTriplets are served when no triplet directory defines the name.
var BuiltinTriplets = map[string]types.Triplet{
	"x64-linux":   {Name: "x64-linux", Arch: "x64", OS: "linux", Linkage: "static", CRT: "dynamic"},
	"arm64-linux": {Name: "arm64-linux", Arch: "arm64", OS: "linux", Linkage: "static", CRT: "dynamic"},
	"x64-windows": {Name: "x64-windows", Arch: "x64", OS: "windows", Linkage: "dynamic", CRT: "dynamic"},
	"x64-osx":     {Name: "x64-osx", Arch: "x64", OS: "osx", Linkage: "static", CRT: "dynamic"},
	"arm64-osx":   {Name: "arm64-osx", Arch: "arm64", OS: "osx", Linkage: "static", CRT: "dynamic"},
}

// TripletDirAdapter resolves triplet names against a list of
// directories holding <name>.yaml or <name>.hcl files. The first
// directory with a match wins.
type TripletDirAdapter struct {
	FS   afero.Fs
	Dirs []string
}

func NewTripletDirAdapter(fs afero.Fs, dirs ...string) TripletDirAdapter {
	return TripletDirAdapter{FS: fs, Dirs: dirs}
}

type hclTripletFile struct {
	Triplets []hclTriplet `hcl:"triplet,block"`
}

type hclTriplet struct {
	Name    string            `hcl:"name,label"`
	Arch    string            `hcl:"arch"`
	OS      string            `hcl:"os"`
	Linkage string            `hcl:"linkage,optional"`
	CRT     string            `hcl:"crt,optional"`
	Flags   map[string]string `hcl:"flags,optional"`
}

func (a TripletDirAdapter) Triplet(name string) (types.Triplet, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return types.Triplet{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid triplet name %q", name))
	}
	for _, dir := range a.Dirs {
		for _, ext := range []string{".yaml", ".hcl"} {
			path := filepath.Join(dir, name+ext)
			data, err := afero.ReadFile(a.FS, path)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return types.Triplet{}, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("failed to read triplet %s", path)).
					WithCause(err)
			}
			var triplet types.Triplet
			if ext == ".hcl" {
				triplet, err = decodeHCLTriplet(path, data, name)
			} else {
				triplet, err = decodeYAMLTriplet(path, data)
			}
			if err != nil {
				return types.Triplet{}, err
			}
			if triplet.Name == "" {
				triplet.Name = name
			}
			return triplet, validateTriplet(name, triplet)
		}
	}
	if triplet, ok := BuiltinTriplets[name]; ok {
		return triplet, nil
	}
	return types.Triplet{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("triplet %s not found", name))
}

func decodeYAMLTriplet(path string, data []byte) (types.Triplet, error) {
	var triplet types.Triplet
	if err := yaml.Unmarshal(data, &triplet); err != nil {
		return types.Triplet{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse triplet %s", path)).
			WithCause(err)
	}
	return triplet, nil
}

func decodeHCLTriplet(path string, data []byte, name string) (types.Triplet, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return types.Triplet{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse triplet %s", path)).
			WithCause(diags)
	}
	var decoded hclTripletFile
	if diags := gohcl.DecodeBody(file.Body, nil, &decoded); diags.HasErrors() {
		return types.Triplet{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to decode triplet %s", path)).
			WithCause(diags)
	}
	for _, block := range decoded.Triplets {
		if block.Name != name {
			continue
		}
		return types.Triplet{
			Name:    block.Name,
			Arch:    block.Arch,
			OS:      block.OS,
			Linkage: block.Linkage,
			CRT:     block.CRT,
			Flags:   block.Flags,
		}, nil
	}
	return types.Triplet{}, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("%s has no triplet %q block", path, name))
}

func validateTriplet(name string, triplet types.Triplet) error {
	switch {
	case triplet.Name != name:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("triplet file for %s declares %s", name, triplet.Name))
	case strings.TrimSpace(triplet.Arch) == "":
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("triplet %s has no arch", name))
	case strings.TrimSpace(triplet.OS) == "":
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("triplet %s has no os", name))
	}
	switch strings.ToLower(triplet.Linkage) {
	case "", "static", "dynamic":
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("triplet %s has unknown linkage %q", name, triplet.Linkage))
	}
	return nil
}

var _ ports.FactsProvider = TripletDirAdapter{}
