package library

import (
	"strings"

	roaring "github.com/RoaringBitmap/roaring"

	"github.com/tukku56/studyshelf/shelf/classify"
)

// FacetIndex holds roaring bitmaps over the ordinals of the sorted item
// sequence, one bitmap per type, subject, and material value. Filtering
// intersects bitmaps and then applies the free-text query to the
// surviving ordinals, so results come back already in library order.
// The index is rebuilt together with its item slice and never mutated
// in place.
type FacetIndex struct {
	items     []Item
	byType    map[classify.Type]*roaring.Bitmap
	bySubject map[string]*roaring.Bitmap
}

func NewFacetIndex(sorted []Item) *FacetIndex {
	fi := &FacetIndex{
		items:     sorted,
		byType:    make(map[classify.Type]*roaring.Bitmap),
		bySubject: make(map[string]*roaring.Bitmap),
	}
	for i, item := range sorted {
		fi.addType(item.Type, uint32(i))
		fi.addSubject(item.Subject, uint32(i))
	}
	return fi
}

func (fi *FacetIndex) addType(t classify.Type, ordinal uint32) {
	bm, ok := fi.byType[t]
	if !ok {
		bm = roaring.New()
		fi.byType[t] = bm
	}
	bm.Add(ordinal)
}

func (fi *FacetIndex) addSubject(subject string, ordinal uint32) {
	bm, ok := fi.bySubject[subject]
	if !ok {
		bm = roaring.New()
		fi.bySubject[subject] = bm
	}
	bm.Add(ordinal)
}

// all returns a bitmap covering every ordinal.
func (fi *FacetIndex) all() *roaring.Bitmap {
	bm := roaring.New()
	if len(fi.items) > 0 {
		bm.AddRange(0, uint64(len(fi.items)))
	}
	return bm
}

func clone(bm *roaring.Bitmap) *roaring.Bitmap {
	c := roaring.New()
	if bm != nil {
		c.Or(bm)
	}
	return c
}

// Filter returns the items matching the type, subject, and normalized
// free-text query, in library order. Empty selectors match everything.
func (fi *FacetIndex) Filter(t, subject, query string) []Item {
	selected := fi.selectBitmap(t, subject)
	needle := NormalizeSearchText(query)

	results := make([]Item, 0, selected.GetCardinality())
	it := selected.Iterator()
	for it.HasNext() {
		item := fi.items[it.Next()]
		if needle != "" && !strings.Contains(item.Searchable, needle) {
			continue
		}
		results = append(results, item)
	}
	return results
}

// SubjectCounts returns per-subject counts for the given type and query,
// ignoring any subject selection so facet counts stay stable while the
// user narrows by subject.
func (fi *FacetIndex) SubjectCounts(t, query string) map[string]int {
	selected := fi.selectBitmap(t, "")
	needle := NormalizeSearchText(query)

	counts := make(map[string]int, len(fi.bySubject))
	it := selected.Iterator()
	for it.HasNext() {
		item := fi.items[it.Next()]
		if needle != "" && !strings.Contains(item.Searchable, needle) {
			continue
		}
		counts[item.Subject]++
	}
	return counts
}

func (fi *FacetIndex) selectBitmap(t, subject string) *roaring.Bitmap {
	selected := fi.all()
	if t != "" {
		selected.And(clone(fi.byType[classify.Type(t)]))
	}
	if subject != "" {
		selected.And(clone(fi.bySubject[subject]))
	}
	return selected
}
