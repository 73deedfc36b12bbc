// Package study tracks what the user plans to work on and what they
// finished: an ordered study queue, per-day completion records, and
// free-text memos. All state is keyed by library item path and pruned
// (memos excepted) whenever the library is replaced.
package study

// Queue is an ordered set of item paths. Insertion order is preserved;
// toggling an already queued path removes it.
type Queue struct {
	paths []string
	index map[string]int
}

func NewQueue(paths []string) *Queue {
	q := &Queue{index: make(map[string]int)}
	for _, p := range paths {
		if _, seen := q.index[p]; seen {
			continue
		}
		q.index[p] = len(q.paths)
		q.paths = append(q.paths, p)
	}
	return q
}

// Toggle adds path when absent and removes it when present. It reports
// whether the path is queued afterwards.
func (q *Queue) Toggle(path string) bool {
	if _, queued := q.index[path]; queued {
		q.Remove(path)
		return false
	}
	q.index[path] = len(q.paths)
	q.paths = append(q.paths, path)
	return true
}

// Remove deletes path from the queue, keeping the order of the rest.
func (q *Queue) Remove(path string) {
	i, queued := q.index[path]
	if !queued {
		return
	}
	q.paths = append(q.paths[:i], q.paths[i+1:]...)
	delete(q.index, path)
	for j := i; j < len(q.paths); j++ {
		q.index[q.paths[j]] = j
	}
}

// Contains reports whether path is queued.
func (q *Queue) Contains(path string) bool {
	_, queued := q.index[path]
	return queued
}

// Paths returns the queued paths in order.
func (q *Queue) Paths() []string {
	out := make([]string, len(q.paths))
	copy(out, q.paths)
	return out
}

// Len returns the number of queued paths.
func (q *Queue) Len() int {
	return len(q.paths)
}

// Prune drops every queued path not present in valid, preserving the
// order of survivors. It reports whether anything was removed.
func (q *Queue) Prune(valid map[string]struct{}) bool {
	kept := q.paths[:0]
	for _, p := range q.paths {
		if _, ok := valid[p]; ok {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(q.index) {
		return false
	}
	q.paths = kept
	q.index = make(map[string]int, len(kept))
	for i, p := range kept {
		q.index[p] = i
	}
	return true
}
