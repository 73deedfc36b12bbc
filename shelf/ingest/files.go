package ingest

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tukku56/studyshelf/shelf/classify"
	"github.com/tukku56/studyshelf/shelf/library"
)

// remoteDriveAuthority marks selections served by the remote drive
// provider; those land in their own bucket instead of the generic one.
const remoteDriveAuthority = "com.google.android.apps.docs"

const (
	bucketRemoteDrive = "GoogleDrive"
	bucketAdded       = "追加"
)

// SelectedFile is one file chosen through the host's picker.
type SelectedFile struct {
	// Name is the provider-supplied display name; may be empty.
	Name string
	// MimeType is the declared content type; consulted only when the
	// name yields no classification.
	MimeType string
	// Locator is the provider reference to the readable resource.
	Locator string
	// Authority identifies the providing backend.
	Authority string
}

// FileAdder turns an ad-hoc file selection into library items. Each
// accepted file gets a bucket-prefixed, collision-free path and a fresh
// stable id.
type FileAdder struct{}

func NewFileAdder() *FileAdder {
	return &FileAdder{}
}

// Add classifies and paths the selection. usedPaths must be seeded with
// every path already in the index so new files cannot shadow existing
// entries; Add extends it as the batch grows. Unclassifiable files are
// dropped.
func (a *FileAdder) Add(files []SelectedFile, usedPaths map[string]struct{}) []SourceItem {
	var items []SourceItem
	for _, f := range files {
		name := displayName(f)
		t := classify.DetectType(name)
		if t == classify.TypeNone {
			t = classify.DetectTypeFromMime(f.MimeType)
		}
		if t == classify.TypeNone {
			continue
		}
		if t == classify.TypeAudio && classify.IsSpeedVariant(name) {
			continue
		}

		path := library.UniquePath(bucketPrefix(f.Authority)+"/"+name, usedPaths)
		usedPaths[path] = struct{}{}

		items = append(items, SourceItem{
			Path:    path,
			Name:    name,
			Type:    t,
			Locator: f.Locator,
			ID:      uuid.NewString(),
		})
	}
	return items
}

// displayName resolves the name to classify and display: the provider
// name, else the last segment of the locator, else the literal "file".
func displayName(f SelectedFile) string {
	if f.Name != "" {
		return f.Name
	}
	locator := strings.TrimRight(f.Locator, "/")
	if idx := strings.LastIndex(locator, "/"); idx >= 0 {
		locator = locator[idx+1:]
	}
	if locator != "" {
		return locator
	}
	return "file"
}

func bucketPrefix(authority string) string {
	if strings.Contains(authority, remoteDriveAuthority) {
		return bucketRemoteDrive
	}
	return bucketAdded
}
