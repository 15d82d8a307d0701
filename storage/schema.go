package storage

import "time"

// Schema version for migrations
const SchemaVersion = 1

// HistoryConfig holds persistent prompt history configuration
type HistoryConfig struct {
	Enabled    bool
	MaxEntries int
	MaxAgeDays int
}

// KVEntry maps to the kv_entries table. The tab set, the active tab id and
// the signed-in user record each live under one well-known key.
type KVEntry struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PromptHistory represents one past chat input for history navigation
type PromptHistory struct {
	ID        int64     `db:"id"`
	Host      string    `db:"host"`      // backend host the prompt was sent to
	Prompt    string    `db:"prompt"`    // user's prompt text
	Timestamp time.Time `db:"timestamp"` // stored as Unix timestamp
}

// SchemaVersionRecord tracks schema migrations
type SchemaVersionRecord struct {
	Version   int       `db:"version"`
	AppliedAt time.Time `db:"applied_at"`
}

// Schema is the SQL DDL for creating all tables
const Schema = `
-- Persisted key-value entries (chatbotTabs, activeTabId, user)
CREATE TABLE IF NOT EXISTS kv_entries (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Prompt history table
CREATE TABLE IF NOT EXISTS prompt_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    host TEXT NOT NULL,
    prompt TEXT NOT NULL,
    timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prompt_history_host ON prompt_history(host, timestamp DESC);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (1, unixepoch());
`
