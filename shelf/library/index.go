package library

import (
	"log/slog"
	"sync"
)

// Persister receives the item sequence after every successful rebuild or
// merge. Persistence is best-effort: a failure (typically storage quota)
// is logged as a warning and the in-memory index stays authoritative for
// the session.
type Persister interface {
	SaveLibrary(items []Item) error
}

// Index is the in-memory library: the sorted item sequence plus the
// derived lookup structures. It is single-writer; the mutex also covers
// readers so no caller ever observes a half-rebuilt snapshot.
type Index struct {
	mu        sync.RWMutex
	items     []Item
	pathIndex *PathIndex
	facets    *FacetIndex
	persister Persister
}

// NewIndex creates an empty index. persister may be nil.
func NewIndex(persister Persister) *Index {
	return &Index{
		pathIndex: NewPathIndex(),
		facets:    NewFacetIndex(nil),
		persister: persister,
	}
}

// Rebuild fully replaces the index. Input items pass through
// classification validation (failures are dropped) and are deduplicated
// by path, last occurrence winning; rebuild never renames. The result is
// sorted, persisted best-effort, and the lookup structures are rebuilt.
func (ix *Index) Rebuild(raw []Item) []Item {
	next := normalizeAndDedupe(raw)
	SortItems(next)

	ix.mu.Lock()
	ix.items = next
	ix.rebuildDerivedLocked()
	ix.mu.Unlock()

	ix.persist(next)
	return next
}

// Merge upserts added items by path: an added item wins over an existing
// one, existing entries for unseen paths are retained, and the result is
// re-sorted rather than concatenated.
func (ix *Index) Merge(added []Item) []Item {
	cleanAdded := normalizeAndDedupe(added)

	ix.mu.Lock()
	byPath := make(map[string]int, len(ix.items))
	merged := make([]Item, len(ix.items))
	copy(merged, ix.items)
	for i, item := range merged {
		byPath[item.Path] = i
	}
	for _, item := range cleanAdded {
		if i, ok := byPath[item.Path]; ok {
			merged[i] = item
			continue
		}
		byPath[item.Path] = len(merged)
		merged = append(merged, item)
	}
	SortItems(merged)
	ix.items = merged
	ix.rebuildDerivedLocked()
	ix.mu.Unlock()

	ix.persist(merged)
	return merged
}

// Lookup returns the item stored under path.
func (ix *Index) Lookup(path string) (Item, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.pathIndex.Lookup(path)
}

// Items returns a copy of the sorted item sequence.
func (ix *Index) Items() []Item {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]Item, len(ix.items))
	copy(out, ix.items)
	return out
}

// Paths returns the set of paths currently in the index, used to seed
// incremental deduplication and to prune queue/done state.
func (ix *Index) Paths() map[string]struct{} {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	paths := make(map[string]struct{}, len(ix.items))
	for _, item := range ix.items {
		paths[item.Path] = struct{}{}
	}
	return paths
}

// Len returns the number of indexed items.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.items)
}

// ItemsUnder returns every item whose path sits below the given
// directory prefix.
func (ix *Index) ItemsUnder(dir string) []Item {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.pathIndex.ItemsUnder(dir)
}

// Filter returns the sorted visible subset for the given type, subject
// and free-text query. Empty selectors match everything.
func (ix *Index) Filter(t, subject, query string) []Item {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.facets.Filter(t, subject, query)
}

// SubjectCounts returns the per-subject item counts for the current
// type/query selection, before any subject narrowing.
func (ix *Index) SubjectCounts(t, query string) map[string]int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.facets.SubjectCounts(t, query)
}

func (ix *Index) rebuildDerivedLocked() {
	ix.pathIndex = NewPathIndex()
	for _, item := range ix.items {
		ix.pathIndex.Insert(item)
	}
	ix.facets = NewFacetIndex(ix.items)
}

func (ix *Index) persist(items []Item) {
	if ix.persister == nil {
		return
	}
	if err := ix.persister.SaveLibrary(items); err != nil {
		slog.Warn("Library persistence failed, in-memory index remains authoritative",
			"items", len(items),
			"error", err)
	}
}

func normalizeAndDedupe(raw []Item) []Item {
	byPath := make(map[string]int, len(raw))
	out := make([]Item, 0, len(raw))
	for _, candidate := range raw {
		item, ok := Normalize(candidate)
		if !ok {
			continue
		}
		if i, seen := byPath[item.Path]; seen {
			out[i] = item
			continue
		}
		byPath[item.Path] = len(out)
		out = append(out, item)
	}
	return out
}
