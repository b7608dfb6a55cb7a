// Package shared provides common utility functions used across multiple
// packages in the portsmith codebase.
package shared

import (
	"sort"
	"strings"
)

// NormalizePortName lowercases a port name and trims surrounding space.
// Port directories and manifest names are compared in this form.
func NormalizePortName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SplitList splits a comma separated flag value, dropping empty items.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
