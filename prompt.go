package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Placeholder text constants
const (
	PlaceholderChat   = "궁금한 점을 입력하세요. Enter to send, : for commands"
	PlaceholderBrowse = "Press enter to open a chat, : for commands"
)

// PromptComponent represents the user input text area with prompt history
type PromptComponent struct {
	TextArea textarea.Model
	Height   int
	Width    int
	Style    lipgloss.Style

	// History navigation. history[0] is the most recent prompt; cursor -1
	// means the user is editing a fresh prompt.
	history       []string
	historyCursor int
	pendingInput  string
}

// NewPromptComponent creates a new prompt component
func NewPromptComponent(width, height int) PromptComponent {
	ta := textarea.New()
	ta.Placeholder = PlaceholderChat
	ta.ShowLineNumbers = false
	ta.Focus()

	ta.SetWidth(width - 2) // Account for borders
	ta.SetHeight(height)

	return PromptComponent{
		TextArea:      ta,
		Height:        height,
		Width:         width,
		historyCursor: -1,
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(globalTheme.PromptOnBorder).
			Width(width).
			Height(height),
	}
}

// SetWidth updates the width of the prompt component
func (p *PromptComponent) SetWidth(width int) {
	p.Width = width
	p.Style = p.Style.Width(width)
	p.TextArea.SetWidth(width - 2)
}

// SetHeight updates the height of the prompt component
func (p *PromptComponent) SetHeight(height int) {
	p.Height = height
	p.Style = p.Style.Height(height)
	p.TextArea.SetHeight(height)
}

// SetFocused updates the border color to reflect focus
func (p *PromptComponent) SetFocused(focused bool) {
	if focused {
		p.TextArea.Focus()
		p.Style = p.Style.BorderForeground(globalTheme.PromptOnBorder)
	} else {
		p.TextArea.Blur()
		p.Style = p.Style.BorderForeground(globalTheme.PromptOffBorder)
	}
}

// SetValue sets the text value of the prompt
func (p *PromptComponent) SetValue(value string) {
	p.TextArea.SetValue(value)
}

// Value returns the current text value
func (p PromptComponent) Value() string {
	return p.TextArea.Value()
}

// Reset clears the prompt and leaves history navigation
func (p *PromptComponent) Reset() {
	p.TextArea.Reset()
	p.historyCursor = -1
	p.pendingInput = ""
}

// SetHistory replaces the history entries, most recent first
func (p *PromptComponent) SetHistory(entries []string) {
	p.history = entries
	p.historyCursor = -1
}

// PushHistory records a sent prompt at the front of the history
func (p *PromptComponent) PushHistory(prompt string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return
	}
	if len(p.history) > 0 && p.history[0] == prompt {
		p.historyCursor = -1
		return
	}
	p.history = append([]string{prompt}, p.history...)
	p.historyCursor = -1
}

// HistoryPrev replaces the prompt with the previous (older) history entry.
// The fresh prompt being edited is stashed so HistoryNext can restore it.
func (p *PromptComponent) HistoryPrev() {
	if len(p.history) == 0 || p.historyCursor >= len(p.history)-1 {
		return
	}
	if p.historyCursor == -1 {
		p.pendingInput = p.TextArea.Value()
	}
	p.historyCursor++
	p.TextArea.SetValue(p.history[p.historyCursor])
	p.TextArea.CursorEnd()
}

// HistoryNext replaces the prompt with the next (newer) history entry,
// restoring the stashed fresh prompt past the newest one.
func (p *PromptComponent) HistoryNext() {
	if p.historyCursor == -1 {
		return
	}
	p.historyCursor--
	if p.historyCursor == -1 {
		p.TextArea.SetValue(p.pendingInput)
	} else {
		p.TextArea.SetValue(p.history[p.historyCursor])
	}
	p.TextArea.CursorEnd()
}

// Update handles messages for the prompt component
func (p PromptComponent) Update(msg tea.Msg) (PromptComponent, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+p":
			p.HistoryPrev()
			return p, nil
		case "ctrl+n":
			p.HistoryNext()
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.TextArea, cmd = p.TextArea.Update(msg)
	return p, cmd
}

// View renders the prompt component
func (p PromptComponent) View() string {
	return p.Style.Render(p.TextArea.View())
}
