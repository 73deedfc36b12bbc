package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"

	"github.com/tukku56/studyshelf/shelf/classify"
)

// IgnoreFileName is looked up at the walk root; when present, matching
// relative paths are skipped in addition to the fixed exclusions.
const IgnoreFileName = ".studyshelf-ignore"

// defaultSkipDirs are never descended into: version control internals,
// the app's own source checkout, and dependency caches. Indexing those
// when pointed at a project directory only produces noise.
var defaultSkipDirs = []string{".git", "offline-study-app", "node_modules"}

// TreeWalker enumerates a granted folder breadth first, one bounded
// worker pool per level. Unreadable subtrees are skipped, not fatal.
type TreeWalker struct {
	provider         FolderProvider
	skipDirs         map[string]struct{}
	maxWorkers       int
	progressInterval int
	onProgress       func(count int)
}

// WalkerOption customizes a TreeWalker.
type WalkerOption func(*TreeWalker)

// WithExtraSkipDirs extends the fixed directory exclusion set.
func WithExtraSkipDirs(names []string) WalkerOption {
	return func(w *TreeWalker) {
		for _, name := range names {
			w.skipDirs[name] = struct{}{}
		}
	}
}

// WithProgress installs an advisory progress callback, invoked roughly
// every interval accumulated items. It must not block.
func WithProgress(interval int, fn func(count int)) WalkerOption {
	return func(w *TreeWalker) {
		if interval > 0 {
			w.progressInterval = interval
		}
		w.onProgress = fn
	}
}

func NewTreeWalker(provider FolderProvider, opts ...WalkerOption) *TreeWalker {
	w := &TreeWalker{
		provider:         provider,
		skipDirs:         make(map[string]struct{}, len(defaultSkipDirs)),
		maxWorkers:       min(max(runtime.NumCPU()*2, 4), 32),
		progressInterval: 250,
	}
	for _, name := range defaultSkipDirs {
		w.skipDirs[name] = struct{}{}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type walkDir struct {
	handle  FolderHandle
	relPath string
}

// Walk enumerates every classifiable file under root. The relative path
// accumulates as parent + "/" + name. Files whose classification is
// none, dotfiles, and excluded directories are dropped; a subdirectory
// whose listing fails is skipped with a warning and the walk continues.
func (w *TreeWalker) Walk(ctx context.Context, root FolderHandle) ([]SourceItem, error) {
	matcher := w.loadIgnoreFile(root)

	var (
		mu    sync.Mutex
		items []SourceItem
		count atomic.Int64
	)

	currentLevel := []walkDir{{handle: root}}
	for len(currentLevel) > 0 {
		var (
			nextMu    sync.Mutex
			nextLevel []walkDir
		)

		levelPool := pool.New().WithMaxGoroutines(w.maxWorkers).WithContext(ctx)
		for _, dir := range currentLevel {
			levelPool.Go(func(ctx context.Context) error {
				entries, err := w.provider.ListEntries(ctx, dir.handle)
				if err != nil {
					slog.Warn("Skipping unreadable directory",
						"path", dir.relPath,
						"error", err)
					return nil
				}

				var localItems []SourceItem
				var localDirs []walkDir
				for _, entry := range entries {
					relPath := entry.Name
					if dir.relPath != "" {
						relPath = dir.relPath + "/" + entry.Name
					}
					if w.skip(entry.Name, relPath, entry.Kind, matcher) {
						continue
					}
					if entry.Kind == KindDirectory {
						localDirs = append(localDirs, walkDir{handle: entry.Child, relPath: relPath})
						continue
					}
					t := classify.DetectType(entry.Name)
					if t == classify.TypeNone {
						continue
					}
					localItems = append(localItems, SourceItem{
						Path:    relPath,
						Name:    entry.Name,
						Type:    t,
						Locator: filepath.Join(dir.handle.Ref(), entry.Name),
					})
				}

				if len(localDirs) > 0 {
					nextMu.Lock()
					nextLevel = append(nextLevel, localDirs...)
					nextMu.Unlock()
				}
				if len(localItems) > 0 {
					mu.Lock()
					items = append(items, localItems...)
					mu.Unlock()
					total := count.Add(int64(len(localItems)))
					w.reportProgress(total, int64(len(localItems)))
				}
				return nil
			})
		}
		if err := levelPool.Wait(); err != nil {
			return nil, err
		}
		currentLevel = nextLevel
	}

	return items, nil
}

func (w *TreeWalker) skip(name, relPath string, kind EntryKind, matcher *ignore.GitIgnore) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if kind == KindDirectory {
		if _, excluded := w.skipDirs[name]; excluded {
			return true
		}
	}
	return matcher != nil && matcher.MatchesPath(relPath)
}

// loadIgnoreFile compiles the optional ignore file at the walk root.
// Only filesystem-backed roots can carry one; anything else quietly has
// no matcher.
func (w *TreeWalker) loadIgnoreFile(root FolderHandle) *ignore.GitIgnore {
	ignorePath := filepath.Join(root.Ref(), IgnoreFileName)
	if _, err := os.Stat(ignorePath); err != nil {
		return nil
	}
	matcher, err := ignore.CompileIgnoreFile(ignorePath)
	if err != nil {
		slog.Warn("Failed to compile ignore file", "path", ignorePath, "error", err)
		return nil
	}
	return matcher
}

// reportProgress fires when the running total crosses a multiple of the
// progress interval. Advisory only; the callback sees the new total.
func (w *TreeWalker) reportProgress(total, added int64) {
	if w.onProgress == nil || w.progressInterval <= 0 {
		return
	}
	interval := int64(w.progressInterval)
	if total/interval > (total-added)/interval {
		w.onProgress(int(total))
	}
}
