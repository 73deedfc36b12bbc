package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return zr
}

func TestSanitizeEntryPath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"clean path", "Math/lecture.pdf", "Math/lecture.pdf", true},
		{"leading slash", "/Math/lecture.pdf", "Math/lecture.pdf", true},
		{"parent traversal", "../../etc/passwd", "etc/passwd", true},
		{"interior traversal", "a/../../b", "a/b", true},
		{"dot segments", "./Math/./x.pdf", "Math/x.pdf", true},
		{"backslashes", `Math\lecture.pdf`, "Math/lecture.pdf", true},
		{"only dots", "../..", "", false},
		{"single dot", ".", "", false},
		{"empty", "", "", false},
		{"only slashes", "///", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SanitizeEntryPath(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractClassifiesAndWrites(t *testing.T) {
	root := t.TempDir()
	zr := buildZip(t, map[string]string{
		"Math/lecture.pdf":        "pdf-bytes",
		"Math/lecture.mp3":        "audio-bytes",
		"Math/lecture_1.5倍速.mp3": "dup",
		"Math/notes.txt":          "text",
		"Math/sub/":               "",
	})

	items, manifest, err := NewArchiveExtractor(root, nil).Extract(context.Background(), zr)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"Math/lecture.pdf", "Math/lecture.mp3"},
		pathsOf(items))
	assert.Len(t, manifest, 2)

	for _, item := range items {
		require.NotEmpty(t, item.ID)
		content, err := os.ReadFile(item.Locator)
		require.NoError(t, err)
		assert.NotEmpty(t, content)
		// Extracted files live directly under the root, keyed by id.
		assert.Equal(t, root, filepath.Dir(item.Locator))
	}
}

func TestExtractNeverEscapesRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "extract")
	zr := buildZip(t, map[string]string{
		"../escape.pdf":     "x",
		"a/../../outer.pdf": "x",
		"inner.pdf":         "x",
	})

	items, _, err := NewArchiveExtractor(root, nil).Extract(context.Background(), zr)
	require.NoError(t, err)

	for _, item := range items {
		canonical, err := filepath.Abs(item.Locator)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(canonical, root+string(filepath.Separator)),
			"%s escaped the extraction root", item.Path)
	}

	// Nothing was written next to the root.
	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "extract", entries[0].Name())
}

func TestExtractReusesPriorIDs(t *testing.T) {
	root := t.TempDir()
	first, manifest, err := NewArchiveExtractor(root, nil).
		Extract(context.Background(), buildZip(t, map[string]string{
			"Math/lecture.pdf": "v1",
			"Math/old.pdf":     "v1",
		}))
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, nextManifest, err := NewArchiveExtractor(root, manifest).
		Extract(context.Background(), buildZip(t, map[string]string{
			"Math/lecture.pdf": "v2",
			"Math/new.pdf":     "v2",
		}))
	require.NoError(t, err)
	require.Len(t, second, 2)

	// Unchanged relative path keeps its id; the dropped path leaves the
	// manifest but its extracted file stays on disk.
	assert.Equal(t, manifest["Math/lecture.pdf"], nextManifest["Math/lecture.pdf"])
	assert.NotContains(t, nextManifest, "Math/old.pdf")
	assert.Contains(t, nextManifest, "Math/new.pdf")

	oldFile := filepath.Join(root, manifest["Math/old.pdf"]+".pdf")
	_, err = os.Stat(oldFile)
	assert.NoError(t, err)
}

func TestExtractUpdatesContentInPlace(t *testing.T) {
	root := t.TempDir()
	_, manifest, err := NewArchiveExtractor(root, nil).
		Extract(context.Background(), buildZip(t, map[string]string{"a/x.pdf": "v1"}))
	require.NoError(t, err)

	items, _, err := NewArchiveExtractor(root, manifest).
		Extract(context.Background(), buildZip(t, map[string]string{"a/x.pdf": "v2"}))
	require.NoError(t, err)
	require.Len(t, items, 1)

	content, err := os.ReadFile(items[0].Locator)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))
}
