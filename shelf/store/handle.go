package store

import (
	"context"
	"fmt"

	internal "github.com/tukku56/studyshelf/shelf"
)

// Handle identifies a previously connected study-root folder so a later
// session can reattach without a fresh picker round trip. Kind names the
// provider that minted the reference; Ref is opaque to everyone else.
type Handle struct {
	Kind string `json:"kind"`
	Ref  string `json:"ref"`
}

// HandleStore persists exactly one handle, under the fixed root key.
// Clearing is always an explicit decision by the caller: a handle that
// fails passive re-validation at startup stays stored, because the
// folder may simply be on unmounted media.
type HandleStore struct {
	store *SQLStore
}

func NewHandleStore(store *SQLStore) *HandleStore {
	return &HandleStore{store: store}
}

func (hs *HandleStore) Save(ctx context.Context, h Handle) error {
	if h.Kind == "" || h.Ref == "" {
		return fmt.Errorf("invalid handle: kind and ref are required")
	}
	return hs.store.SaveHandle(ctx, internal.KeyRootHandle, h.Kind, h.Ref)
}

func (hs *HandleStore) Load(ctx context.Context) (Handle, error) {
	kind, ref, err := hs.store.LoadHandle(ctx, internal.KeyRootHandle)
	if err != nil {
		return Handle{}, err
	}
	return Handle{Kind: kind, Ref: ref}, nil
}

func (hs *HandleStore) Clear(ctx context.Context) error {
	return hs.store.DeleteHandle(ctx, internal.KeyRootHandle)
}
