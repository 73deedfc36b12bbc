package library

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"backslashes", `労基\第1回.pdf`, "労基/第1回.pdf"},
		{"leading slash", "/労基/第1回.pdf", "労基/第1回.pdf"},
		{"trailing slash", "労基/第1回.pdf/", "労基/第1回.pdf"},
		{"already clean", "労基/第1回.pdf", "労基/第1回.pdf"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.input))
		})
	}
}

func TestUniquePath(t *testing.T) {
	used := map[string]struct{}{
		"労基/第1回.pdf":     {},
		"労基/第1回 (2).pdf": {},
	}

	assert.Equal(t, "労基/第2回.pdf", UniquePath("労基/第2回.pdf", used))
	assert.Equal(t, "労基/第1回 (3).pdf", UniquePath("労基/第1回.pdf", used))
}

func TestUniquePathPreservesExtension(t *testing.T) {
	used := map[string]struct{}{"a/b.mp3": {}}
	assert.Equal(t, "a/b (2).mp3", UniquePath("a/b.mp3", used))
}

func TestUniquePathNoExtension(t *testing.T) {
	used := map[string]struct{}{"a/b": {}}
	assert.Equal(t, "a/b (2)", UniquePath("a/b", used))
}

func TestUniquePathDotfile(t *testing.T) {
	// A leading dot is part of the stem, not an extension.
	used := map[string]struct{}{".hidden": {}}
	assert.Equal(t, ".hidden (2)", UniquePath(".hidden", used))
}

func TestUniquePathProbesSequentially(t *testing.T) {
	used := map[string]struct{}{"x.pdf": {}}
	for n := 2; n <= 5; n++ {
		got := UniquePath("x.pdf", used)
		assert.Equal(t, fmt.Sprintf("x (%d).pdf", n), got)
		used[got] = struct{}{}
	}
}
