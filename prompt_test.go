package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptHistoryNavigation(t *testing.T) {
	p := NewPromptComponent(80, 3)
	p.SetHistory([]string{"최근 질문", "이전 질문"})

	p.SetValue("작성 중이던 글")

	p.HistoryPrev()
	assert.Equal(t, "최근 질문", p.Value())
	p.HistoryPrev()
	assert.Equal(t, "이전 질문", p.Value())
	// Already at the oldest entry.
	p.HistoryPrev()
	assert.Equal(t, "이전 질문", p.Value())

	p.HistoryNext()
	assert.Equal(t, "최근 질문", p.Value())
	// Walking past the newest restores the stashed draft.
	p.HistoryNext()
	assert.Equal(t, "작성 중이던 글", p.Value())
	// Nothing newer than the draft.
	p.HistoryNext()
	assert.Equal(t, "작성 중이던 글", p.Value())
}

func TestPromptHistoryEmpty(t *testing.T) {
	p := NewPromptComponent(80, 3)

	p.SetValue("그대로")
	p.HistoryPrev()
	assert.Equal(t, "그대로", p.Value())
	p.HistoryNext()
	assert.Equal(t, "그대로", p.Value())
}

func TestPushHistoryDedupsHead(t *testing.T) {
	p := NewPromptComponent(80, 3)

	p.PushHistory("질문")
	p.PushHistory("질문")
	p.PushHistory("다른 질문")
	p.PushHistory("  ")

	p.HistoryPrev()
	assert.Equal(t, "다른 질문", p.Value())
	p.HistoryPrev()
	assert.Equal(t, "질문", p.Value())
	p.HistoryPrev()
	assert.Equal(t, "질문", p.Value())
}

func TestPromptResetLeavesHistoryIntact(t *testing.T) {
	p := NewPromptComponent(80, 3)
	p.PushHistory("질문")

	p.HistoryPrev()
	p.Reset()
	assert.Empty(t, p.Value())

	p.HistoryPrev()
	assert.Equal(t, "질문", p.Value())
}
