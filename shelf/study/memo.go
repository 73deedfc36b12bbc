package study

import "strings"

// MemoPad holds free-text notes keyed by item path. Memos are never
// pruned when the library changes: a note may refer to a file on
// unmounted media, and user text cannot be reconstructed once dropped.
type MemoPad struct {
	notes map[string]string
}

func NewMemoPad(notes map[string]string) *MemoPad {
	if notes == nil {
		notes = make(map[string]string)
	}
	return &MemoPad{notes: notes}
}

// Set stores the note for path. An empty or whitespace-only note
// deletes the entry.
func (m *MemoPad) Set(path, note string) {
	if strings.TrimSpace(note) == "" {
		delete(m.notes, path)
		return
	}
	m.notes[path] = note
}

// Get returns the note for path, empty when absent.
func (m *MemoPad) Get(path string) string {
	return m.notes[path]
}

// All returns a copy of every stored note.
func (m *MemoPad) All() map[string]string {
	out := make(map[string]string, len(m.notes))
	for p, note := range m.notes {
		out[p] = note
	}
	return out
}
