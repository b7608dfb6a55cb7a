package types

import (
	"sort"
	"strings"
)

// Triplet describes a build target: architecture, OS, library linkage,
// CRT linkage and any user-defined flags.
type Triplet struct {
	Name    string            `yaml:"name"`
	Arch    string            `yaml:"arch"`
	OS      string            `yaml:"os"`
	Linkage string            `yaml:"linkage"`
	CRT     string            `yaml:"crt"`
	Flags   map[string]string `yaml:"flags,omitempty"`
}

// Fact keys whose values may be named bare in a platform expression.
const (
	FactOS      = "os"
	FactArch    = "arch"
	FactLinkage = "linkage"
	FactCRT     = "crt"
	FactNative  = "native"
)

// Facts is the set of key/value pairs a platform expression is
// evaluated against. Keys are lower case.
type Facts map[string]string

func (t Triplet) Facts() Facts {
	facts := Facts{}
	for key, value := range t.Flags {
		facts[strings.ToLower(strings.TrimSpace(key))] = strings.ToLower(strings.TrimSpace(value))
	}
	set := func(key string, value string) {
		if value = strings.ToLower(strings.TrimSpace(value)); value != "" {
			facts[key] = value
		}
	}
	set(FactOS, t.OS)
	set(FactArch, t.Arch)
	set(FactLinkage, t.Linkage)
	set(FactCRT, t.CRT)
	return facts
}

// Identity renders the triplet name and its sorted facts. Two triplets
// with the same identity produce the same binaries.
func (t Triplet) Identity() string {
	facts := t.Facts()
	keys := make([]string, 0, len(facts))
	for key := range facts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	builder.WriteString(t.Name)
	for _, key := range keys {
		builder.WriteString(";")
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(facts[key])
	}
	return builder.String()
}
