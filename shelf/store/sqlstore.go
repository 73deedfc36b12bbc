package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/go-libsql"
)

// SQLStore backs the KV surface with a libsql database. A file: DSN
// gives durable local storage; the in-memory DSN serves tests.
type SQLStore struct {
	db *sql.DB
}

// The libsql driver executes only the first statement of a multi-statement
// Exec, so each schema statement is issued separately.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS handles (
	key  TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	ref  TEXT NOT NULL
)`,
}

// NewSQLStore opens the database at dsn and ensures the schema exists.
func NewSQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize store schema: %w", err)
		}
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) GetString(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) SetString(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		if isQuotaError(err) {
			return ErrQuotaExceeded
		}
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// SaveHandle stores a folder handle under key, replacing any previous one.
func (s *SQLStore) SaveHandle(ctx context.Context, key, kind, ref string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO handles (key, kind, ref) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET kind = excluded.kind, ref = excluded.ref`,
		key, kind, ref)
	if err != nil {
		if isQuotaError(err) {
			return ErrQuotaExceeded
		}
		return fmt.Errorf("failed to save handle %q: %w", key, err)
	}
	return nil
}

// LoadHandle returns the handle stored under key, or ErrNotFound.
func (s *SQLStore) LoadHandle(ctx context.Context, key string) (kind, ref string, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT kind, ref FROM handles WHERE key = ?`, key).Scan(&kind, &ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to load handle %q: %w", key, err)
	}
	return kind, ref, nil
}

// DeleteHandle removes the handle under key if present.
func (s *SQLStore) DeleteHandle(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM handles WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete handle %q: %w", key, err)
	}
	return nil
}

func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "quota")
}

var _ KV = (*SQLStore)(nil)
