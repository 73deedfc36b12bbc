// Package session owns the process-wide study state: the library index,
// the study queue, completion records, memos, persistence, and the
// folder capability. All mutation flows through one Session so the
// index is never observed together with stale queue or done state.
package session

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/ZanzyTHEbar/assert-lib"

	"github.com/tukku56/studyshelf/shelf/config"
	"github.com/tukku56/studyshelf/shelf/ingest"
	"github.com/tukku56/studyshelf/shelf/library"
	"github.com/tukku56/studyshelf/shelf/store"
	"github.com/tukku56/studyshelf/shelf/study"
)

// Session is the explicit context object every component hangs off.
// There are no ambient singletons; callers hold a Session and pass it
// where needed.
type Session struct {
	mu sync.Mutex

	cfg       *config.Config
	index     *library.Index
	queue     *study.Queue
	done      *study.DoneTracker
	memos     *study.MemoPad
	snapshots *store.Snapshots
	handles   *store.HandleStore
	provider  ingest.FolderProvider
	runner    *ingest.Runner
	adder     *ingest.FileAdder

	assertHandler *assert.AssertHandler

	// activeHandle is the folder currently serving rescans. It is nil
	// when no folder is connected or the stored handle failed passive
	// re-validation.
	activeHandle ingest.FolderHandle

	// archiveManifest maps archive-relative paths to stable ids from
	// the most recent import.
	archiveManifest map[string]string

	onProgress func(count int)
}

// Option customizes a Session.
type Option func(*Session)

// WithProgress installs an advisory scan-progress callback.
func WithProgress(fn func(count int)) Option {
	return func(s *Session) { s.onProgress = fn }
}

// WithProvider replaces the default local-filesystem folder provider.
func WithProvider(p ingest.FolderProvider) Option {
	return func(s *Session) { s.provider = p }
}

func New(cfg *config.Config, sqlStore *store.SQLStore, opts ...Option) *Session {
	snapshots := store.NewSnapshots(sqlStore)
	s := &Session{
		cfg:             cfg,
		queue:           study.NewQueue(nil),
		done:            study.NewDoneTracker(nil),
		memos:           study.NewMemoPad(nil),
		snapshots:       snapshots,
		handles:         store.NewHandleStore(sqlStore),
		provider:        ingest.NewOSFolderProvider(),
		runner:          ingest.NewRunner(),
		adder:           ingest.NewFileAdder(),
		assertHandler:   assert.NewAssertHandler(),
		archiveManifest: make(map[string]string),
	}
	s.index = library.NewIndex(store.NewLibraryPersister(snapshots))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore hydrates the session from persisted snapshots and
// re-validates any stored folder handle without prompting. A handle
// that fails the passive check stays stored but inactive; an
// interactive retry later may still succeed.
func (s *Session) Restore(ctx context.Context) error {
	items, err := s.snapshots.LoadLibrary(ctx)
	if err != nil {
		return err
	}
	queue, err := s.snapshots.LoadQueue(ctx)
	if err != nil {
		return err
	}
	done, err := s.snapshots.LoadDoneByDate(ctx)
	if err != nil {
		return err
	}
	memos, err := s.snapshots.LoadMemos(ctx)
	if err != nil {
		return err
	}
	manifest, err := s.snapshots.LoadArchiveManifest(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.index.Rebuild(items)
	s.queue = study.NewQueue(queue)
	s.done = study.NewDoneTracker(done)
	s.memos = study.NewMemoPad(memos)
	s.archiveManifest = manifest
	s.pruneLocked()
	s.mu.Unlock()

	s.reattachStoredHandle(ctx)
	return nil
}

func (s *Session) reattachStoredHandle(ctx context.Context) {
	h, err := s.handles.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		slog.Warn("Failed to load stored folder handle", "error", err)
		return
	}
	if h.Kind != s.provider.Kind() {
		slog.Warn("Stored handle kind does not match the active provider",
			"stored", h.Kind,
			"provider", s.provider.Kind())
		return
	}
	handle, err := s.provider.Resolve(h.Ref)
	if err != nil {
		slog.Warn("Stored folder handle no longer resolves, keeping it for an interactive retry",
			"ref", h.Ref,
			"error", err)
		return
	}
	if s.provider.QueryPermission(ctx, handle) != ingest.PermissionGranted {
		slog.Info("Stored folder handle failed passive re-validation, re-grant required",
			"ref", h.Ref)
		return
	}

	s.mu.Lock()
	s.activeHandle = handle
	s.mu.Unlock()
}

// ConnectFolder grants and scans a folder, fully replacing the library.
// The handle supersedes any previously stored one. A concurrent
// ingestion is rejected with ErrScanInFlight.
func (s *Session) ConnectFolder(ctx context.Context, handle ingest.FolderHandle) (ingest.Result, error) {
	return s.runner.Do(ctx, func(ctx context.Context) ingest.Result {
		if s.provider.RequestPermission(ctx, handle) != ingest.PermissionGranted {
			return ingest.Failure(ingest.ReasonPermissionDenied)
		}

		result := s.scanAndRebuild(ctx, handle)
		if !result.OK {
			return result
		}

		if err := s.handles.Save(ctx, store.Handle{Kind: s.provider.Kind(), Ref: handle.Ref()}); err != nil {
			slog.Warn("Failed to persist folder handle", "error", err)
		}
		s.mu.Lock()
		s.activeHandle = handle
		s.mu.Unlock()
		return result
	})
}

// Rescan walks the active folder again and rebuilds the library. An
// inactive or missing handle is a folder_unavailable failure, not a
// prompt.
func (s *Session) Rescan(ctx context.Context) (ingest.Result, error) {
	return s.runner.Do(ctx, func(ctx context.Context) ingest.Result {
		s.mu.Lock()
		handle := s.activeHandle
		s.mu.Unlock()
		if handle == nil {
			return ingest.Failure(ingest.ReasonFolderUnavailable)
		}
		if s.provider.QueryPermission(ctx, handle) != ingest.PermissionGranted {
			return ingest.Failure(ingest.ReasonPermissionDenied)
		}
		return s.scanAndRebuild(ctx, handle)
	})
}

func (s *Session) scanAndRebuild(ctx context.Context, handle ingest.FolderHandle) ingest.Result {
	walker := ingest.NewTreeWalker(s.provider,
		ingest.WithExtraSkipDirs(s.cfg.Scan.ExtraSkipDirs),
		ingest.WithProgress(s.cfg.Scan.ProgressInterval, s.onProgress))

	items, err := walker.Walk(ctx, handle)
	if err != nil {
		slog.Warn("Folder walk failed", "folder", handle.Ref(), "error", err)
		return ingest.Failure(ingest.ReasonFolderUnavailable)
	}
	if len(items) == 0 {
		return ingest.Failure(ingest.ReasonNoSupportedFiles)
	}

	s.replaceLibrary(ctx, items)
	return ingest.Success(items)
}

// AddFiles merges an ad-hoc file selection into the library. File mode
// supersedes folder mode: any stored folder handle is cleared.
func (s *Session) AddFiles(ctx context.Context, files []ingest.SelectedFile) (ingest.Result, error) {
	return s.runner.Do(ctx, func(ctx context.Context) ingest.Result {
		if len(files) == 0 {
			return ingest.Failure(ingest.ReasonEmpty)
		}

		s.mu.Lock()
		used := s.index.Paths()
		added := s.adder.Add(files, used)
		if len(added) == 0 {
			s.mu.Unlock()
			return ingest.Failure(ingest.ReasonNoSupportedFiles)
		}
		s.index.Merge(toItems(added))
		s.pruneLocked()
		s.activeHandle = nil
		s.mu.Unlock()

		if err := s.handles.Clear(ctx); err != nil {
			slog.Warn("Failed to clear stored folder handle", "error", err)
		}
		s.persistStudyState(ctx)
		return ingest.Success(added)
	})
}

// ImportArchive extracts a zip archive into the extraction root and
// replaces the library with its contents. Re-imports reuse stable ids
// for unchanged relative paths.
func (s *Session) ImportArchive(ctx context.Context, r io.ReaderAt, size int64) (ingest.Result, error) {
	return s.runner.Do(ctx, func(ctx context.Context) ingest.Result {
		zr, err := zip.NewReader(r, size)
		if err != nil {
			slog.Warn("Failed to open archive", "error", err)
			return ingest.Failure(ingest.ReasonZipUnavailable)
		}
		if len(zr.File) == 0 {
			return ingest.Failure(ingest.ReasonEmpty)
		}

		s.mu.Lock()
		prev := s.archiveManifest
		s.mu.Unlock()

		extractor := ingest.NewArchiveExtractor(s.cfg.ExtractionRoot, prev)
		items, manifest, err := extractor.Extract(ctx, zr)
		if err != nil {
			slog.Warn("Archive extraction failed", "error", err)
			return ingest.Failure(ingest.ReasonZipUnavailable)
		}
		if len(items) == 0 {
			return ingest.Failure(ingest.ReasonNoSupportedFiles)
		}

		s.mu.Lock()
		s.archiveManifest = manifest
		s.mu.Unlock()
		s.replaceLibrary(ctx, items)

		if err := s.snapshots.SaveArchiveManifest(ctx, manifest); err != nil {
			slog.Warn("Failed to persist archive manifest", "error", err)
		}
		return ingest.Success(items)
	})
}

// replaceLibrary rebuilds the index from source items and prunes the
// queue and done records in the same critical section, so no reader
// sees a rebuilt index beside stale study state.
func (s *Session) replaceLibrary(ctx context.Context, items []ingest.SourceItem) {
	s.mu.Lock()
	s.index.Rebuild(toItems(items))
	s.pruneLocked()
	s.mu.Unlock()
	s.persistStudyState(ctx)
}

func (s *Session) pruneLocked() {
	valid := s.index.Paths()
	s.queue.Prune(valid)
	s.done.Prune(valid)
}

// persistStudyState writes the queue, done, and memo snapshots.
// Failures degrade to warnings; the in-memory state stays authoritative.
func (s *Session) persistStudyState(ctx context.Context) {
	s.mu.Lock()
	queue := s.queue.Paths()
	done := s.done.ByDay()
	memos := s.memos.All()
	s.mu.Unlock()

	if err := s.snapshots.SaveQueue(ctx, queue); err != nil {
		s.warnPersist("queue", err)
	}
	if err := s.snapshots.SaveDoneByDate(ctx, done); err != nil {
		s.warnPersist("done records", err)
	}
	if err := s.snapshots.SaveMemos(ctx, memos); err != nil {
		s.warnPersist("memos", err)
	}
}

func (s *Session) warnPersist(what string, err error) {
	if errors.Is(err, store.ErrQuotaExceeded) {
		slog.Warn("Storage quota exceeded, in-memory state remains valid", "state", what)
		return
	}
	slog.Warn("Failed to persist study state", "state", what, "error", err)
}

// ToggleQueue flips queue membership for path and reports the new state.
func (s *Session) ToggleQueue(ctx context.Context, path string) bool {
	s.mu.Lock()
	queued := s.queue.Toggle(path)
	s.mu.Unlock()
	s.persistStudyState(ctx)
	return queued
}

// ToggleDone flips today's completion mark for path. Toggling a path
// that is no longer in the library has no effect.
func (s *Session) ToggleDone(ctx context.Context, path string) bool {
	s.mu.Lock()
	if _, exists := s.index.Lookup(path); !exists {
		s.mu.Unlock()
		return false
	}
	done := s.done.Toggle(path)
	s.mu.Unlock()
	s.persistStudyState(ctx)
	return done
}

// ClearTodayDone wipes today's completion records only.
func (s *Session) ClearTodayDone(ctx context.Context) {
	s.mu.Lock()
	s.done.ClearToday()
	s.mu.Unlock()
	s.persistStudyState(ctx)
}

// SaveMemo stores a free-text note for path. Memos survive library
// changes; an empty note deletes the entry.
func (s *Session) SaveMemo(ctx context.Context, path, note string) {
	s.mu.Lock()
	s.memos.Set(path, note)
	s.mu.Unlock()
	s.persistStudyState(ctx)
}

// Memo returns the stored note for path.
func (s *Session) Memo(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memos.Get(path)
}

// QueuePaths returns the queue in display order.
func (s *Session) QueuePaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Paths()
}

// DoneToday returns today's completed paths.
func (s *Session) DoneToday() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done.DoneToday()
}

// Items returns the full sorted library.
func (s *Session) Items() []library.Item {
	return s.index.Items()
}

// Filter returns the visible subset for the given selectors.
func (s *Session) Filter(t, subject, query string) []library.Item {
	return s.index.Filter(t, subject, query)
}

// SubjectCounts returns per-subject counts for the subject facet row.
func (s *Session) SubjectCounts(t, query string) map[string]int {
	return s.index.SubjectCounts(t, query)
}

// Connected reports whether a folder handle is active for rescans.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeHandle != nil
}

func toItems(sources []ingest.SourceItem) []library.Item {
	items := make([]library.Item, 0, len(sources))
	for _, src := range sources {
		items = append(items, library.Item{
			Path: src.Path,
			Name: src.Name,
			Type: src.Type,
		})
	}
	return items
}
