package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SelectWindow is a generic component for displaying a selectable list of items
type SelectWindow[T any] struct {
	Width      int
	Height     int
	Items      []T
	Loading    bool
	Error      error
	MaxVisible int
}

// NewSelectWindow creates a new generic select window
func NewSelectWindow[T any]() SelectWindow[T] {
	return SelectWindow[T]{
		Width:  70,
		Height: 15,
		Items:  []T{},
	}
}

// SetSize updates the dimensions
func (s *SelectWindow[T]) SetSize(width, height int) {
	s.Width = width
	s.Height = height
	// Account for title line
	s.MaxVisible = height - 1
	if s.MaxVisible < 1 {
		s.MaxVisible = 1
	}
}

// SetItems updates the items list
func (s *SelectWindow[T]) SetItems(items []T) {
	s.Items = items
	s.Loading = false
	s.Error = nil
}

// SetLoading sets loading state
func (s *SelectWindow[T]) SetLoading(loading bool) {
	s.Loading = loading
	if loading {
		s.Error = nil
	}
}

// SetError sets error state
func (s *SelectWindow[T]) SetError(err error) {
	s.Error = err
	s.Loading = false
}

// GetItemCount returns the number of items
func (s *SelectWindow[T]) GetItemCount() int {
	return len(s.Items)
}

// GetSelectedItem returns the item at the given index
func (s *SelectWindow[T]) GetSelectedItem(index int) *T {
	if index < 0 || index >= len(s.Items) {
		return nil
	}
	return &s.Items[index]
}

// NextIndex returns the next index after current, or current at the end
func (s *SelectWindow[T]) NextIndex(current int) int {
	if current < len(s.Items)-1 {
		return current + 1
	}
	return current
}

// PrevIndex returns the previous index before current, or current at the top
func (s *SelectWindow[T]) PrevIndex(current int) int {
	if current > 0 {
		return current - 1
	}
	return current
}

// RenderConfig holds callbacks for customization
type RenderConfig[T any] struct {
	Title string

	// Optional overrides
	OnLoading func(sb *strings.Builder)
	OnError   func(sb *strings.Builder, err error)
	OnEmpty   func(sb *strings.Builder)

	// RenderItem renders a single item
	// index is the absolute index in the Items slice
	RenderItem func(i int, item T, isSelected bool, sb *strings.Builder)
}

// Render renders the list with the given selection and configuration
func (s *SelectWindow[T]) Render(selectedIndex, scrollOffset int, config RenderConfig[T]) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.PromptBorder).
		Background(globalTheme.PaneBackground).
		Padding(0, 1)

	totalItems := len(s.Items)
	title := titleStyle.Render(fmt.Sprintf("%s [%3d/%3d]:", config.Title, selectedIndex+1, totalItems))

	var sb strings.Builder

	if s.Loading {
		if config.OnLoading != nil {
			config.OnLoading(&sb)
		} else {
			sb.WriteString("Loading...\n")
			sb.WriteString("\n")
			sb.WriteString("⏳ Please wait...\n")
		}
		return title + "\n" + sb.String()
	}

	if s.Error != nil {
		if config.OnError != nil {
			config.OnError(&sb, s.Error)
		} else {
			sb.WriteString("Error:\n")
			sb.WriteString(fmt.Sprintf("%v\n", s.Error))
		}
		return title + "\n" + sb.String()
	}

	if totalItems == 0 {
		if config.OnEmpty != nil {
			config.OnEmpty(&sb)
		} else {
			sb.WriteString("No items found.\n")
		}
		return title + "\n" + sb.String()
	}

	if scrollOffset < 0 {
		scrollOffset = 0
	}
	maxOffset := totalItems - s.MaxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if scrollOffset > maxOffset {
		scrollOffset = maxOffset
	}
	start := scrollOffset
	end := scrollOffset + s.MaxVisible
	if end > totalItems {
		end = totalItems
	}

	for i := start; i < end; i++ {
		isSelected := i == selectedIndex
		if config.RenderItem != nil {
			config.RenderItem(i, s.Items[i], isSelected, &sb)
		} else {
			prefix := "  "
			if isSelected {
				prefix = "▶ "
			}
			sb.WriteString(fmt.Sprintf("%s%v\n", prefix, s.Items[i]))
		}
	}
	return title + "\n" + sb.String()
}
