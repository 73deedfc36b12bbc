package library

import (
	"strings"

	"github.com/armon/go-radix"
)

// PathIndex maps normalized item paths to items through a compressed
// radix tree, giving O(k) exact lookups and cheap prefix walks for
// directory-scoped queries. It carries no lock of its own; the owning
// Index serializes access.
type PathIndex struct {
	tree *radix.Tree
}

func NewPathIndex() *PathIndex {
	return &PathIndex{tree: radix.New()}
}

// Insert stores the item under its path, replacing any previous entry.
func (pi *PathIndex) Insert(item Item) {
	pi.tree.Insert(item.Path, item)
}

// Lookup finds an item by exact path.
func (pi *PathIndex) Lookup(path string) (Item, bool) {
	value, found := pi.tree.Get(NormalizePath(path))
	if !found {
		return Item{}, false
	}
	return value.(Item), true
}

// Delete removes the entry for path and reports whether it existed.
func (pi *PathIndex) Delete(path string) bool {
	_, deleted := pi.tree.Delete(NormalizePath(path))
	return deleted
}

// ItemsUnder returns every item below the given directory. An empty
// directory matches the whole tree. The trailing slash is forced onto
// non-empty prefixes so "労基" does not also match "労基法/...".
func (pi *PathIndex) ItemsUnder(dir string) []Item {
	prefix := NormalizePath(dir)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var results []Item
	pi.tree.WalkPrefix(prefix, func(key string, value interface{}) bool {
		results = append(results, value.(Item))
		return false
	})
	return results
}

// Len returns the number of indexed paths.
func (pi *PathIndex) Len() int {
	return pi.tree.Len()
}
