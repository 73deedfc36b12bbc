// Package store persists session state: library snapshots, the study
// queue, per-day completion records, memos, and the connected-folder
// handle. Everything goes through a small key-value surface so the
// in-memory layers stay storage-agnostic.
package store

import (
	"context"
	"errors"
)

// ErrQuotaExceeded signals that the backing storage refused a write for
// capacity reasons. Callers treat it as non-fatal: the in-memory state
// stays authoritative and the failure is surfaced as a warning.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrNotFound signals an absent key.
var ErrNotFound = errors.New("key not found")

// KV is the persistence surface for all session state.
type KV interface {
	// GetString returns the value stored at key, or ErrNotFound.
	GetString(ctx context.Context, key string) (string, error)
	// SetString stores value at key, replacing any previous value.
	SetString(ctx context.Context, key, value string) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
