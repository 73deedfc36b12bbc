package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// EntryKind distinguishes files from directories in a folder listing.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// Entry is one child of a listed folder.
type Entry struct {
	Name  string
	Kind  EntryKind
	Child FolderHandle
}

// Permission is the outcome of a handle permission check.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	// PermissionPrompt means the provider needs an interactive request
	// before the handle can be used.
	PermissionPrompt Permission = "prompt"
)

// FolderHandle is a revocable reference to one directory. Handles are
// provider-specific; Ref is what gets persisted so a later session can
// reattach.
type FolderHandle interface {
	Name() string
	Ref() string
}

// FolderProvider brokers access to directory trees.
type FolderProvider interface {
	Kind() string
	// Resolve turns a persisted ref back into a live handle.
	Resolve(ref string) (FolderHandle, error)
	ListEntries(ctx context.Context, h FolderHandle) ([]Entry, error)
	// QueryPermission checks non-interactively.
	QueryPermission(ctx context.Context, h FolderHandle) Permission
	// RequestPermission may prompt the user.
	RequestPermission(ctx context.Context, h FolderHandle) Permission
}

// osFolderHandle wraps an absolute directory path.
type osFolderHandle struct {
	path string
}

func (h osFolderHandle) Name() string { return filepath.Base(h.path) }
func (h osFolderHandle) Ref() string  { return h.path }

// OSFolderProvider serves directory trees straight from the local
// filesystem. Permission maps to plain readability: there is no prompt
// to show, so query and request behave identically.
type OSFolderProvider struct{}

func NewOSFolderProvider() *OSFolderProvider {
	return &OSFolderProvider{}
}

func (p *OSFolderProvider) Kind() string { return "os-folder" }

func (p *OSFolderProvider) Resolve(ref string) (FolderHandle, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty folder reference")
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder reference %q: %w", ref, err)
	}
	return osFolderHandle{path: abs}, nil
}

// NewOSFolderHandle builds a handle for a local directory path.
func NewOSFolderHandle(path string) (FolderHandle, error) {
	return (&OSFolderProvider{}).Resolve(path)
}

func (p *OSFolderProvider) ListEntries(ctx context.Context, h FolderHandle) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(h.Ref())
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", h.Ref(), err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		kind := KindFile
		var child FolderHandle
		if de.IsDir() {
			kind = KindDirectory
			child = osFolderHandle{path: filepath.Join(h.Ref(), de.Name())}
		}
		entries = append(entries, Entry{Name: de.Name(), Kind: kind, Child: child})
	}
	return entries, nil
}

func (p *OSFolderProvider) QueryPermission(_ context.Context, h FolderHandle) Permission {
	info, err := os.Stat(h.Ref())
	if err != nil || !info.IsDir() {
		return PermissionDenied
	}
	if _, err := os.ReadDir(h.Ref()); err != nil {
		return PermissionDenied
	}
	return PermissionGranted
}

func (p *OSFolderProvider) RequestPermission(ctx context.Context, h FolderHandle) Permission {
	return p.QueryPermission(ctx, h)
}

var _ FolderProvider = (*OSFolderProvider)(nil)
