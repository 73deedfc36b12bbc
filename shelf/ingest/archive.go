package ingest

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tukku56/studyshelf/shelf/classify"
)

// ArchiveExtractor streams classifiable entries out of a zip archive
// into a private extraction root. Extracted files are keyed by a stable
// id; re-importing an updated archive reuses the prior id for an
// unchanged relative path so the merged library keeps pointing at the
// same resource. Files extracted by an earlier import but absent from
// the new archive stay on disk; only the id set shrinks.
type ArchiveExtractor struct {
	root string
	// prev maps relative entry path to the id assigned by the previous
	// import of this library.
	prev map[string]string
}

func NewArchiveExtractor(root string, prevManifest map[string]string) *ArchiveExtractor {
	return &ArchiveExtractor{root: root, prev: prevManifest}
}

// SanitizeEntryPath canonicalizes an archive entry name: split on "/",
// drop empty, "." and ".." segments, and reject the entry outright when
// nothing survives. Rejection is silent and hard; a traversal attempt
// must never degrade to a partial path.
func SanitizeEntryPath(entryName string) (string, bool) {
	segments := strings.Split(strings.ReplaceAll(entryName, "\\", "/"), "/")
	clean := segments[:0]
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		clean = append(clean, seg)
	}
	if len(clean) == 0 {
		return "", false
	}
	return strings.Join(clean, "/"), true
}

// Extract walks the archive sequentially, writing each accepted entry
// under the extraction root. Entries that fail sanitization, land
// outside the root, or fail classification are skipped. The returned
// manifest maps relative path to id for exactly the entries the new
// archive contains.
func (e *ArchiveExtractor) Extract(ctx context.Context, zr *zip.Reader) ([]SourceItem, map[string]string, error) {
	if err := os.MkdirAll(e.root, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create extraction root: %w", err)
	}
	canonicalRoot, err := filepath.Abs(e.root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve extraction root: %w", err)
	}

	var items []SourceItem
	manifest := make(map[string]string)

	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if entry.FileInfo().IsDir() {
			continue
		}

		relPath, ok := SanitizeEntryPath(entry.Name)
		if !ok {
			continue
		}
		if !e.containedInRoot(canonicalRoot, relPath) {
			continue
		}

		name := relPath
		if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
			name = relPath[idx+1:]
		}
		t := classify.DetectType(name)
		if t == classify.TypeNone {
			continue
		}

		id, reused := e.prev[relPath]
		if !reused {
			id = uuid.NewString()
		}

		dest := filepath.Join(canonicalRoot, id+strings.ToLower(filepath.Ext(name)))
		if err := e.writeEntry(entry, dest); err != nil {
			slog.Warn("Skipping unextractable archive entry",
				"entry", relPath,
				"error", err)
			continue
		}

		manifest[relPath] = id
		items = append(items, SourceItem{
			Path:    relPath,
			Name:    name,
			Type:    t,
			Locator: dest,
			ID:      id,
		})
	}

	return items, manifest, nil
}

// containedInRoot verifies that the reconstructed output path for the
// sanitized entry cannot escape the extraction root.
func (e *ArchiveExtractor) containedInRoot(canonicalRoot, relPath string) bool {
	dest := filepath.Join(canonicalRoot, filepath.FromSlash(relPath))
	canonical, err := filepath.Abs(dest)
	if err != nil {
		return false
	}
	return canonical == canonicalRoot ||
		strings.HasPrefix(canonical, canonicalRoot+string(filepath.Separator))
}

// writeEntry copies one entry's content. Writes are sequential; the
// extractor never runs two writers against the extraction root.
func (e *ArchiveExtractor) writeEntry(entry *zip.File, dest string) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry: %w", err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to copy entry content: %w", err)
	}
	return out.Close()
}
