package shared

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePortName(t *testing.T) {
	assert.Equal(t, "zlib-ng", NormalizePortName("  ZLib-NG "))
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"b": 2, "a": 1, "c": 3})
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
	assert.Empty(t, SortedKeys(map[string]bool{}))
}

func TestSplitList(t *testing.T) {
	if diff := cmp.Diff([]string{"ports", "overlay"}, SplitList(" ports, ,overlay,")); diff != "" {
		t.Fatalf("unexpected list (-want +got):\n%s", diff)
	}
	assert.Nil(t, SplitList(""))
}
