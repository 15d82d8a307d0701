package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// KVStore persists small JSON-serialized values under string keys. It backs
// the tab set, the active tab pointer and the signed-in user record. Writes
// are synchronous; every call hits the database.
type KVStore struct {
	db *DB
}

// NewKVStore creates a key-value store over the given database
func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value stored under key. The second return is false when
// the key does not exist.
func (s *KVStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.conn.QueryRow("SELECT value FROM kv_entries WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read kv entry %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *KVStore) Set(key, value string) error {
	_, err := s.db.conn.Exec(`
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write kv entry %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry under key. Deleting a missing key is not an error.
func (s *KVStore) Delete(key string) error {
	if _, err := s.db.conn.Exec("DELETE FROM kv_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete kv entry %q: %w", key, err)
	}
	return nil
}
