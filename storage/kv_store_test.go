package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKVStoreSetGetDelete(t *testing.T) {
	kv := NewKVStore(newTestDB(t))

	_, ok, err := kv.Get("chatbotTabs")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("chatbotTabs", `[{"id":"tab_1_0"}]`))

	value, ok, err := kv.Get("chatbotTabs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"tab_1_0"}]`, value)

	require.NoError(t, kv.Delete("chatbotTabs"))
	_, ok, err = kv.Get("chatbotTabs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVStoreSetOverwrites(t *testing.T) {
	kv := NewKVStore(newTestDB(t))

	require.NoError(t, kv.Set("activeTabId", "tab_1_0"))
	require.NoError(t, kv.Set("activeTabId", "tab_2_0"))

	value, ok, err := kv.Get("activeTabId")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tab_2_0", value)
}

func TestKVStoreDeleteMissingKey(t *testing.T) {
	kv := NewKVStore(newTestDB(t))
	require.NoError(t, kv.Delete("nope"))
}

func TestKVStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moa.sqlite")

	db, err := InitDB(path)
	require.NoError(t, err)
	require.NoError(t, NewKVStore(db).Set("user", `{"id":1}`))
	require.NoError(t, db.Close())

	db, err = InitDB(path)
	require.NoError(t, err)
	defer db.Close()

	value, ok, err := NewKVStore(db).Get("user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"id":1}`, value)
}

func TestDBStats(t *testing.T) {
	db := newTestDB(t)
	kv := NewKVStore(db)
	require.NoError(t, kv.Set("a", "1"))
	require.NoError(t, kv.Set("b", "2"))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats["kv_entries"])
	assert.EqualValues(t, 0, stats["prompt_history"])
}
