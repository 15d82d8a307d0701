package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// BrowseComponent shows the assignment marketplace: a selectable list with
// a detail pane for the highlighted assignment.
type BrowseComponent struct {
	Width  int
	Height int

	list          SelectWindow[Assignment]
	selectedIndex int
	scrollOffset  int
	showDetail    bool
}

// NewBrowseComponent creates the assignment browser
func NewBrowseComponent(width, height int) *BrowseComponent {
	b := &BrowseComponent{
		list: NewSelectWindow[Assignment](),
	}
	b.SetSize(width, height)
	b.list.SetLoading(true)
	return b
}

// SetSize updates the dimensions
func (b *BrowseComponent) SetSize(width, height int) {
	b.Width = width
	b.Height = height
	b.list.SetSize(width, height)
}

// SetAssignments replaces the listed assignments
func (b *BrowseComponent) SetAssignments(assignments []Assignment) {
	b.list.SetItems(assignments)
	if b.selectedIndex >= len(assignments) {
		b.selectedIndex = 0
		b.scrollOffset = 0
	}
}

// SetError puts the list into its error state
func (b *BrowseComponent) SetError(err error) {
	b.list.SetError(err)
}

// Selected returns the highlighted assignment, or nil
func (b *BrowseComponent) Selected() *Assignment {
	return b.list.GetSelectedItem(b.selectedIndex)
}

// MoveDown moves the selection down
func (b *BrowseComponent) MoveDown() {
	b.selectedIndex = b.list.NextIndex(b.selectedIndex)
	if b.selectedIndex >= b.scrollOffset+b.list.MaxVisible {
		b.scrollOffset = b.selectedIndex - b.list.MaxVisible + 1
	}
}

// MoveUp moves the selection up
func (b *BrowseComponent) MoveUp() {
	b.selectedIndex = b.list.PrevIndex(b.selectedIndex)
	if b.selectedIndex < b.scrollOffset {
		b.scrollOffset = b.selectedIndex
	}
}

// ToggleDetail switches between the list and the detail pane
func (b *BrowseComponent) ToggleDetail() {
	if b.list.GetItemCount() == 0 {
		return
	}
	b.showDetail = !b.showDetail
}

// View renders the browser
func (b *BrowseComponent) View() string {
	if b.showDetail {
		if a := b.Selected(); a != nil {
			return b.renderDetail(*a)
		}
	}

	return b.list.Render(b.selectedIndex, b.scrollOffset, RenderConfig[Assignment]{
		Title: "과제 목록",
		OnEmpty: func(sb *strings.Builder) {
			sb.WriteString("등록된 과제가 없습니다.\n")
		},
		RenderItem: func(i int, a Assignment, isSelected bool, sb *strings.Builder) {
			prefix := "  "
			style := lipgloss.NewStyle().Foreground(globalTheme.TextColor)
			if isSelected {
				prefix = "▶ "
				style = style.Bold(true).Foreground(globalTheme.ChatBorder)
			}

			state := ""
			if a.Closed() {
				state = lipgloss.NewStyle().
					Foreground(globalTheme.Error).
					Render(" [마감]")
			}

			line := fmt.Sprintf("%s%s — %s ~ %s%s",
				prefix, a.Title,
				formatAssignDate(a.StartAt), formatAssignDate(a.EndAt),
				state)
			sb.WriteString(style.Render(line))
			sb.WriteString("\n")
		},
	})
}

// renderDetail renders the full assignment card
func (b *BrowseComponent) renderDetail(a Assignment) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.PromptBorder)
	labelStyle := lipgloss.NewStyle().Foreground(globalTheme.ChatBorder)

	wrapWidth := b.Width - 4
	if wrapWidth < 1 {
		wrapWidth = 1
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(a.Title))
	sb.WriteString("\n\n")
	sb.WriteString(wordwrap.String(a.Content, wrapWidth))
	sb.WriteString("\n\n")
	sb.WriteString(labelStyle.Render("기간: "))
	sb.WriteString(fmt.Sprintf("%s ~ %s\n", formatAssignDate(a.StartAt), formatAssignDate(a.EndAt)))
	sb.WriteString(labelStyle.Render("담당자: "))
	sb.WriteString(fmt.Sprintf("%s (%s)\n", a.AdminName, a.AdminEmail))
	if a.Closed() {
		sb.WriteString(lipgloss.NewStyle().
			Foreground(globalTheme.Error).
			Render("\n마감된 과제입니다.\n"))
	}
	sb.WriteString("\nenter: 채팅 시작  esc: 목록으로\n")

	return globalTheme.Border.
		Width(b.Width - 2).
		Render(sb.String())
}
