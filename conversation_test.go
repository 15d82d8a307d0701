package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationStoreAppend(t *testing.T) {
	tabs := newTestTabManager()
	store := NewConversationStore(tabs)
	tabID := tabs.CreateOrSwitch(Assignment{ID: 1, Title: "테스트 과제"})

	messages := store.Append(tabID, Message{Role: roleUser, Content: "마감이 언제인가요?"})
	require.Len(t, messages, 2) // greeting + the new message
	assert.Equal(t, roleUser, messages[1].Role)

	persisted, ok := tabs.Messages(tabID)
	require.True(t, ok)
	assert.Equal(t, messages, persisted)
}

func TestConversationStoreAppendUnknownTab(t *testing.T) {
	store := NewConversationStore(newTestTabManager())
	assert.Nil(t, store.Append("tab_99_0", Message{Role: roleUser, Content: "x"}))
}

// Growing the in-progress AI message one character at a time must leave a
// consistent prefix in storage after every step, so a crash mid-stream
// reloads cleanly.
func TestConversationStoreGrowsLastAIMessage(t *testing.T) {
	kv := newMemoryKV()
	tabs := NewTabManager(kv, newTestLogger())
	store := NewConversationStore(tabs)
	tabID := tabs.CreateOrSwitch(Assignment{ID: 7, Title: "제안서 검토"})

	store.Append(tabID, Message{Role: roleUser, Content: "질문"})
	store.Append(tabID, Message{Role: roleAI, Content: ""})

	for _, char := range []string{"a", "b", "c"} {
		store.MutateLastIfRole(tabID, roleAI, func(m Message) Message {
			m.Content += char
			return m
		})

		// Every step is observable through a cold reload of the same KV.
		reloaded := NewTabManager(kv, newTestLogger())
		msgs, ok := reloaded.Messages(tabID)
		require.True(t, ok)
		assert.Equal(t, roleAI, msgs[len(msgs)-1].Role)
	}

	msgs, ok := tabs.Messages(tabID)
	require.True(t, ok)
	assert.Equal(t, "abc", msgs[len(msgs)-1].Content)
}

func TestConversationStoreMutateSkipsWrongRole(t *testing.T) {
	tabs := newTestTabManager()
	store := NewConversationStore(tabs)
	tabID := tabs.CreateOrSwitch(Assignment{ID: 3, Title: "역할 확인"})

	store.Append(tabID, Message{Role: roleUser, Content: "사용자 메시지"})

	messages := store.MutateLastIfRole(tabID, roleAI, func(m Message) Message {
		m.Content = "덮어쓰기"
		return m
	})

	require.NotEmpty(t, messages)
	assert.Equal(t, "사용자 메시지", messages[len(messages)-1].Content)
}

func TestConversationStoreMutateEmptyOrUnknownTab(t *testing.T) {
	tabs := newTestTabManager()
	store := NewConversationStore(tabs)

	assert.Nil(t, store.MutateLastIfRole("tab_1_0", roleAI, func(m Message) Message { return m }))
}

func TestConversationStoreReplace(t *testing.T) {
	tabs := newTestTabManager()
	store := NewConversationStore(tabs)
	tabID := tabs.CreateOrSwitch(Assignment{ID: 5, Title: "교체"})

	replacement := []Message{{Role: roleAI, Content: "새 기록"}}
	assert.Equal(t, replacement, store.Replace(tabID, replacement))

	msgs, ok := tabs.Messages(tabID)
	require.True(t, ok)
	assert.Equal(t, replacement, msgs)

	assert.Nil(t, store.Replace("tab_404_0", replacement))
}

func TestMessageJSONShape(t *testing.T) {
	data, err := json.Marshal(Message{Role: roleUser, Content: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(data))
}
