package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrSwitchSeedsGreeting(t *testing.T) {
	tabs := newTestTabManager()

	tabID := tabs.CreateOrSwitch(Assignment{ID: 42, Title: "쇼핑몰 구축"})

	tab, ok := tabs.Tab(tabID)
	require.True(t, ok)
	assert.Equal(t, 42, tab.AssignmentID)
	assert.Equal(t, "쇼핑몰 구축", tab.AssignmentTitle)
	require.Len(t, tab.Messages, 1)
	assert.Equal(t, roleAI, tab.Messages[0].Role)
	assert.Equal(t, `안녕하세요! "쇼핑몰 구축" 과제에 대해 무엇이든 물어보세요!`, tab.Messages[0].Content)
	assert.Equal(t, tabID, tabs.ActiveTabID())
}

// At most one tab per assignment: a second open switches instead of
// creating, and the existing transcript survives.
func TestCreateOrSwitchDedupesByAssignment(t *testing.T) {
	tabs := newTestTabManager()
	store := NewConversationStore(tabs)

	first := tabs.CreateOrSwitch(Assignment{ID: 10, Title: "앱 개발"})
	store.Append(first, Message{Role: roleUser, Content: "견적이 궁금해요"})

	tabs.CreateOrSwitch(Assignment{ID: 11, Title: "다른 과제"})
	second := tabs.CreateOrSwitch(Assignment{ID: 10, Title: "앱 개발"})

	assert.Equal(t, first, second)
	assert.Equal(t, first, tabs.ActiveTabID())
	assert.Len(t, tabs.Tabs(), 2)

	msgs, ok := tabs.Messages(first)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestCloseActiveTabFallsBackToFirst(t *testing.T) {
	tabs := newTestTabManager()
	first := tabs.CreateOrSwitch(Assignment{ID: 1, Title: "하나"})
	second := tabs.CreateOrSwitch(Assignment{ID: 2, Title: "둘"})

	tabs.Close(second)

	assert.Equal(t, first, tabs.ActiveTabID())
	assert.Len(t, tabs.Tabs(), 1)

	tabs.Close(first)
	assert.Empty(t, tabs.ActiveTabID())
	assert.Empty(t, tabs.Tabs())
}

func TestCloseInactiveTabKeepsActive(t *testing.T) {
	tabs := newTestTabManager()
	first := tabs.CreateOrSwitch(Assignment{ID: 1, Title: "하나"})
	second := tabs.CreateOrSwitch(Assignment{ID: 2, Title: "둘"})

	tabs.Close(first)

	assert.Equal(t, second, tabs.ActiveTabID())
}

func TestSetActiveIgnoresUnknownTab(t *testing.T) {
	tabs := newTestTabManager()
	tabID := tabs.CreateOrSwitch(Assignment{ID: 1, Title: "하나"})

	tabs.SetActive("tab_999_0")
	assert.Equal(t, tabID, tabs.ActiveTabID())
}

// A tab set written by one manager is fully restored by a fresh manager
// over the same store, including the active pointer.
func TestTabPersistenceRoundTrip(t *testing.T) {
	kv := newMemoryKV()

	tabs := NewTabManager(kv, newTestLogger())
	first := tabs.CreateOrSwitch(Assignment{ID: 1, Title: "하나", AdminName: "김담당"})
	tabs.CreateOrSwitch(Assignment{ID: 2, Title: "둘"})
	tabs.SetActive(first)

	reloaded := NewTabManager(kv, newTestLogger())
	assert.Equal(t, tabs.Tabs(), reloaded.Tabs())
	assert.Equal(t, first, reloaded.ActiveTabID())

	tab, ok := reloaded.FindExistingTab(1)
	require.True(t, ok)
	assert.Equal(t, "김담당", tab.Assignment.AdminName)
}

func TestLoadResetsCorruptTabState(t *testing.T) {
	kv := newMemoryKV()
	require.NoError(t, kv.Set(kvKeyTabs, "{{{not json"))
	require.NoError(t, kv.Set(kvKeyActiveTab, "tab_1_0"))

	tabs := NewTabManager(kv, newTestLogger())

	assert.Empty(t, tabs.Tabs())
	assert.Empty(t, tabs.ActiveTabID())

	_, ok, err := kv.Get(kvKeyTabs)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = kv.Get(kvKeyActiveTab)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadStaleActivePointerFallsBack(t *testing.T) {
	kv := newMemoryKV()

	tabs := NewTabManager(kv, newTestLogger())
	first := tabs.CreateOrSwitch(Assignment{ID: 1, Title: "하나"})
	tabs.CreateOrSwitch(Assignment{ID: 2, Title: "둘"})

	// Point at a tab that no longer exists.
	require.NoError(t, kv.Set(kvKeyActiveTab, "tab_777_0"))

	reloaded := NewTabManager(kv, newTestLogger())
	assert.Equal(t, first, reloaded.ActiveTabID())
}

func TestUpdateMessagesPersistsSynchronously(t *testing.T) {
	kv := newMemoryKV()
	tabs := NewTabManager(kv, newTestLogger())
	tabID := tabs.CreateOrSwitch(Assignment{ID: 9, Title: "동기화"})

	tabs.UpdateMessages(tabID, []Message{{Role: roleUser, Content: "즉시 반영"}})

	reloaded := NewTabManager(kv, newTestLogger())
	msgs, ok := reloaded.Messages(tabID)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "즉시 반영", msgs[0].Content)
}

func TestTabIDFormat(t *testing.T) {
	tabs := newTestTabManager()
	tabID := tabs.CreateOrSwitch(Assignment{ID: 123, Title: "아이디"})
	assert.Regexp(t, fmt.Sprintf(`^tab_%d_\d+$`, 123), tabID)
}
