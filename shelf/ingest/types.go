// Package ingest feeds the library index from three interchangeable
// sources: a recursive walk of a granted folder, a zip archive, and an
// ad-hoc file selection. Every source converges on the same item shape
// and resolves every outcome, success or failure, to a Result.
package ingest

import (
	"github.com/tukku56/studyshelf/shelf/classify"
)

// SourceItem is the common output shape of all ingestion sources.
// Enrichment (subject, material, search text) happens downstream in the
// library; a source only reports path, display name, type, and where
// the readable resource actually lives.
type SourceItem struct {
	Path string        `json:"path"`
	Name string        `json:"name"`
	Type classify.Type `json:"type"`
	// Locator points at the readable resource: an absolute filesystem
	// path for walked and extracted files, a provider reference for
	// selected files.
	Locator string `json:"locator"`
	// ID is the stable identifier for bridge-backed resources. Archive
	// re-imports reuse the prior id for an unchanged relative path.
	ID string `json:"id,omitempty"`
}

// Failure reasons. Every source failure degrades to one of these; none
// escapes the ingestion boundary as an error.
const (
	ReasonCanceled          = "canceled"
	ReasonPickerUnavailable = "picker_unavailable"
	ReasonPermissionDenied  = "permission_denied"
	ReasonFolderUnavailable = "folder_unavailable"
	ReasonZipUnavailable    = "zip_unavailable"
	ReasonNoSupportedFiles  = "no_supported_files"
	ReasonEmpty             = "empty"
	ReasonQuotaExceeded     = "storage_quota_exceeded"
)

// Result is the structured payload delivered to the display layer when
// an ingestion completes.
type Result struct {
	OK     bool         `json:"ok"`
	Count  int          `json:"count,omitempty"`
	Files  []SourceItem `json:"files,omitempty"`
	Reason string       `json:"error,omitempty"`
}

// Success wraps a completed item batch.
func Success(files []SourceItem) Result {
	return Result{OK: true, Count: len(files), Files: files}
}

// Failure wraps a terminal failure reason.
func Failure(reason string) Result {
	return Result{OK: false, Reason: reason}
}
