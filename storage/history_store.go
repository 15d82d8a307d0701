package storage

import (
	"fmt"
	"time"
)

// HistoryStore handles chat prompt history persistence. History is scoped
// per backend host so switching servers does not mix up suggestions.
type HistoryStore struct {
	db  *DB
	cfg *HistoryConfig
}

// NewHistoryStore creates a new history store
func NewHistoryStore(db *DB, cfg *HistoryConfig) *HistoryStore {
	return &HistoryStore{
		db:  db,
		cfg: cfg,
	}
}

// AppendPrompt adds a prompt to the history for the given backend host
func (h *HistoryStore) AppendPrompt(host, prompt string) error {
	_, err := h.db.conn.Exec(`
		INSERT INTO prompt_history (host, prompt, timestamp)
		VALUES (?, ?, ?)`,
		host,
		prompt,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append prompt: %w", err)
	}

	// Apply limit if configured
	if h.cfg != nil && h.cfg.MaxEntries > 0 {
		_, err = h.db.conn.Exec(`
			DELETE FROM prompt_history
			WHERE host = ?
			AND id NOT IN (
				SELECT id FROM prompt_history
				WHERE host = ?
				ORDER BY timestamp DESC, id DESC
				LIMIT ?
			)`,
			host, host, h.cfg.MaxEntries,
		)
		if err != nil {
			return fmt.Errorf("failed to apply prompt history limit: %w", err)
		}
	}

	return nil
}

// LoadPrompts loads prompt history for the given host, most recent first.
// A non-positive limit loads everything.
func (h *HistoryStore) LoadPrompts(host string, limit int) ([]string, error) {
	query := `
		SELECT prompt FROM prompt_history
		WHERE host = ?
		ORDER BY timestamp DESC, id DESC`
	args := []any{host}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt history: %w", err)
	}
	defer rows.Close()

	var prompts []string
	seen := make(map[string]bool)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// Cleanup removes entries older than the configured maximum age
func (h *HistoryStore) Cleanup() error {
	if h.cfg == nil || h.cfg.MaxAgeDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -h.cfg.MaxAgeDays).Unix()
	if _, err := h.db.conn.Exec("DELETE FROM prompt_history WHERE timestamp < ?", cutoff); err != nil {
		return fmt.Errorf("failed to clean up prompt history: %w", err)
	}
	return nil
}

// ClearAll removes all prompt history entries
func (h *HistoryStore) ClearAll() error {
	if _, err := h.db.conn.Exec("DELETE FROM prompt_history"); err != nil {
		return fmt.Errorf("failed to clear prompt history: %w", err)
	}
	return nil
}
