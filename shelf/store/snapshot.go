package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	internal "github.com/tukku56/studyshelf/shelf"
	"github.com/tukku56/studyshelf/shelf/library"
)

// Snapshots serializes session state to the KV surface as JSON
// payloads under fixed keys. A missing key loads as empty state.
type Snapshots struct {
	kv KV
}

func NewSnapshots(kv KV) *Snapshots {
	return &Snapshots{kv: kv}
}

func (s *Snapshots) SaveLibrary(ctx context.Context, items []library.Item) error {
	return s.save(ctx, internal.KeyLibrary, items)
}

func (s *Snapshots) LoadLibrary(ctx context.Context) ([]library.Item, error) {
	var items []library.Item
	if err := s.load(ctx, internal.KeyLibrary, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Snapshots) SaveQueue(ctx context.Context, paths []string) error {
	return s.save(ctx, internal.KeyQueue, paths)
}

func (s *Snapshots) LoadQueue(ctx context.Context) ([]string, error) {
	var paths []string
	if err := s.load(ctx, internal.KeyQueue, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *Snapshots) SaveDoneByDate(ctx context.Context, done map[string]map[string]int64) error {
	return s.save(ctx, internal.KeyDoneByDate, done)
}

func (s *Snapshots) LoadDoneByDate(ctx context.Context) (map[string]map[string]int64, error) {
	done := make(map[string]map[string]int64)
	if err := s.load(ctx, internal.KeyDoneByDate, &done); err != nil {
		return nil, err
	}
	return done, nil
}

func (s *Snapshots) SaveMemos(ctx context.Context, memos map[string]string) error {
	return s.save(ctx, internal.KeyMemos, memos)
}

func (s *Snapshots) LoadMemos(ctx context.Context) (map[string]string, error) {
	memos := make(map[string]string)
	if err := s.load(ctx, internal.KeyMemos, &memos); err != nil {
		return nil, err
	}
	return memos, nil
}

func (s *Snapshots) SaveArchiveManifest(ctx context.Context, manifest map[string]string) error {
	return s.save(ctx, internal.KeyArchiveManifest, manifest)
}

func (s *Snapshots) LoadArchiveManifest(ctx context.Context) (map[string]string, error) {
	manifest := make(map[string]string)
	if err := s.load(ctx, internal.KeyArchiveManifest, &manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (s *Snapshots) save(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q snapshot: %w", key, err)
	}
	return s.kv.SetString(ctx, key, string(payload))
}

func (s *Snapshots) load(ctx context.Context, key string, target any) error {
	payload, err := s.kv.GetString(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("failed to decode %q snapshot: %w", key, err)
	}
	return nil
}

// LibraryPersister adapts Snapshots to the library's persistence hook,
// which carries no context of its own.
type LibraryPersister struct {
	snapshots *Snapshots
}

func NewLibraryPersister(snapshots *Snapshots) *LibraryPersister {
	return &LibraryPersister{snapshots: snapshots}
}

func (p *LibraryPersister) SaveLibrary(items []library.Item) error {
	return p.snapshots.SaveLibrary(context.Background(), items)
}

var _ library.Persister = (*LibraryPersister)(nil)
