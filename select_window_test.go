package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderConfig() RenderConfig[Assignment] {
	return RenderConfig[Assignment]{
		Title: "과제 목록",
		OnLoading: func(sb *strings.Builder) {
			sb.WriteString("불러오는 중...\n")
		},
		OnError: func(sb *strings.Builder, err error) {
			sb.WriteString("오류: " + err.Error() + "\n")
		},
		OnEmpty: func(sb *strings.Builder) {
			sb.WriteString("등록된 과제가 없습니다\n")
		},
		RenderItem: func(i int, a Assignment, isSelected bool, sb *strings.Builder) {
			if isSelected {
				sb.WriteString("> " + a.Title + "\n")
			} else {
				sb.WriteString("  " + a.Title + "\n")
			}
		},
	}
}

func TestSelectWindowNavigation(t *testing.T) {
	w := NewSelectWindow[Assignment]()
	w.SetItems([]Assignment{{ID: 1}, {ID: 2}, {ID: 3}})

	assert.Equal(t, 3, w.GetItemCount())
	assert.Equal(t, 1, w.NextIndex(0))
	assert.Equal(t, 2, w.NextIndex(2)) // clamped at the end
	assert.Equal(t, 1, w.PrevIndex(2))
	assert.Equal(t, 0, w.PrevIndex(0)) // clamped at the top

	item := w.GetSelectedItem(1)
	require.NotNil(t, item)
	assert.Equal(t, 2, item.ID)

	assert.Nil(t, w.GetSelectedItem(-1))
	assert.Nil(t, w.GetSelectedItem(5))
}

func TestSelectWindowRenderStates(t *testing.T) {
	w := NewSelectWindow[Assignment]()
	w.SetSize(60, 10)
	cfg := testRenderConfig()

	w.SetLoading(true)
	assert.Contains(t, w.Render(0, 0, cfg), "불러오는 중")

	w.SetLoading(false)
	w.SetError(errors.New("연결 실패"))
	assert.Contains(t, w.Render(0, 0, cfg), "오류: 연결 실패")

	// A fresh item list clears both the loading and error states.
	w.SetItems(nil)
	assert.Contains(t, w.Render(0, 0, cfg), "등록된 과제가 없습니다")

	w.SetItems([]Assignment{{Title: "하나"}, {Title: "둘"}})
	out := w.Render(1, 0, cfg)
	assert.Contains(t, out, "과제 목록")
	assert.Contains(t, out, "  하나")
	assert.Contains(t, out, "> 둘")
	assert.Less(t, strings.Index(out, "하나"), strings.Index(out, "둘"))
}

func TestSelectWindowScrollWindow(t *testing.T) {
	w := NewSelectWindow[Assignment]()
	w.SetSize(60, 4) // title + 3 visible rows
	cfg := testRenderConfig()

	w.SetItems([]Assignment{
		{Title: "a1"}, {Title: "a2"}, {Title: "a3"}, {Title: "a4"}, {Title: "a5"},
	})

	out := w.Render(4, 2, cfg)
	assert.NotContains(t, out, "a2")
	assert.Contains(t, out, "a3")
	assert.Contains(t, out, "> a5")

	// An offset past the end clamps to the last full window.
	out = w.Render(4, 99, cfg)
	assert.Contains(t, out, "a3")
	assert.Contains(t, out, "a5")
}
