package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vovakirdan/axiom-drop/internal/progress"
)

// Get returns the value stored under key.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: cannot read %s: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", key, err)
	}
	return nil
}

// Update rewrites the value under key inside one transaction, so a
// concurrent writer cannot slip in between the read and the write.
func (s *Store) Update(key string, fn func(value []byte, ok bool) ([]byte, error)) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin update of %s: %w", key, err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	var old []byte
	ok := true
	err = tx.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&old)
	if errors.Is(err, sql.ErrNoRows) {
		ok, err = false, nil
	}
	if err != nil {
		return fmt.Errorf("storage: cannot read %s: %w", key, err)
	}

	value, err := fn(old, ok)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot delete %s: %w", key, err)
	}
	return nil
}

// Ensure Store can back a progress.Service.
var _ progress.KV = (*Store)(nil)

// NewProgressRegistry returns a progress registry over store, or over an
// in-memory store when store is nil.
func NewProgressRegistry(store *Store) *progress.Registry {
	if store == nil {
		return progress.NewRegistry(progress.NewMemoryKV())
	}
	return progress.NewRegistry(store)
}
