// Package library holds the study-material index: the item model, path
// canonicalization, the ordered index with merge semantics, and the
// lookup/filter structures derived from it.
package library

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tukku56/studyshelf/shelf/classify"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Item is one classified study material. Items are immutable once
// constructed; re-derivation replaces them wholesale.
type Item struct {
	// Path is forward-slash separated, relative, and unique within an
	// index snapshot. It is the primary key everywhere.
	Path     string        `json:"path"`
	Name     string        `json:"name"`
	Type     classify.Type `json:"type"`
	Subject  string        `json:"subject"`
	Material string        `json:"material"`

	// Searchable is a pure function of the other fields. It is recomputed
	// on load and never trusted from storage.
	Searchable string `json:"-"`
}

// NewItem builds a fully enriched item from a normalized path and type.
func NewItem(path string, t classify.Type) Item {
	normalized := NormalizePath(path)
	name := normalized
	if idx := strings.LastIndex(normalized, "/"); idx >= 0 {
		name = normalized[idx+1:]
	}
	subject := classify.Subject(normalized)
	material := classify.Material(name, normalized, t)

	return Item{
		Path:       normalized,
		Name:       name,
		Type:       t,
		Subject:    subject,
		Material:   material,
		Searchable: NormalizeSearchText(normalized + " " + name + " " + subject + " " + material),
	}
}

// Normalize re-validates an item loaded from storage or handed in by an
// ingestion source. Missing fields are re-derived, the searchable text is
// always recomputed, and items that fail classification are dropped.
func Normalize(raw Item) (Item, bool) {
	path := strings.TrimSpace(NormalizePath(raw.Path))
	if path == "" {
		return Item{}, false
	}

	name := raw.Name
	if name == "" {
		name = path
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			name = path[idx+1:]
		}
	}

	t := raw.Type
	if t != classify.TypePDF && t != classify.TypeAudio {
		t = classify.DetectType(name)
	}
	if t == classify.TypeNone {
		return Item{}, false
	}

	subject := raw.Subject
	if subject == "" {
		subject = classify.Subject(path)
	}
	material := raw.Material
	if material == "" {
		material = classify.Material(name, path, t)
	}

	return Item{
		Path:       path,
		Name:       name,
		Type:       t,
		Subject:    subject,
		Material:   material,
		Searchable: NormalizeSearchText(path + " " + name + " " + subject + " " + material),
	}, true
}

var searchSpaceRE = regexp.MustCompile(`\s+`)

// NormalizeSearchText lower-cases and collapses whitespace. The same
// normalization is applied to queries so substring search lines up.
func NormalizeSearchText(value string) string {
	return strings.TrimSpace(searchSpaceRE.ReplaceAllString(strings.ToLower(value), " "))
}

// NewCollator returns the locale-aware collator used for all item
// ordering. Collators are not safe for concurrent use; create one per
// sort pass.
func NewCollator() *collate.Collator {
	return collate.New(language.Japanese)
}

// Compare imposes the library's total order: subject, then material,
// type, name, and finally path as the deterministic tie-break.
func Compare(c *collate.Collator, a, b Item) int {
	if r := c.CompareString(a.Subject, b.Subject); r != 0 {
		return r
	}
	if r := c.CompareString(a.Material, b.Material); r != 0 {
		return r
	}
	if r := c.CompareString(string(a.Type), string(b.Type)); r != 0 {
		return r
	}
	if r := c.CompareString(a.Name, b.Name); r != 0 {
		return r
	}
	return c.CompareString(a.Path, b.Path)
}

// SortItems sorts in place using the library order.
func SortItems(items []Item) {
	c := NewCollator()
	sort.SliceStable(items, func(i, j int) bool {
		return Compare(c, items[i], items[j]) < 0
	})
}
