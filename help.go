package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// HelpComponent shows the key bindings and command reference
type HelpComponent struct {
	Viewport viewport.Model
	Width    int
	Height   int
}

// NewHelpComponent creates the help view
func NewHelpComponent(width, height int, registry CommandRegistry) *HelpComponent {
	vp := viewport.New(width, height)
	h := &HelpComponent{
		Viewport: vp,
		Width:    width,
		Height:   height,
	}
	h.Viewport.SetContent(renderHelp(registry, width))
	return h
}

// SetSize updates the dimensions
func (h *HelpComponent) SetSize(width, height int, registry CommandRegistry) {
	h.Width = width
	h.Height = height
	h.Viewport.Width = width
	h.Viewport.Height = height
	h.Viewport.SetContent(renderHelp(registry, width))
}

// View renders the help view
func (h *HelpComponent) View() string {
	return h.Viewport.View()
}

func renderHelp(registry CommandRegistry, width int) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.PromptBorder)
	cmdStyle := lipgloss.NewStyle().
		Foreground(globalTheme.ChatBorder)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("moa — 과제 도우미"))
	sb.WriteString("\n\n")

	sb.WriteString(titleStyle.Render("Keys"))
	sb.WriteString("\n")
	keys := [][2]string{
		{"enter", "send message / open assignment chat"},
		{"esc", "back to the previous view"},
		{"tab", "next conversation tab"},
		{"shift+tab", "previous conversation tab"},
		{"ctrl+p / ctrl+n", "older / newer prompt from history"},
		{"ctrl+c", "cancel a streaming answer, quit when idle"},
		{"pgup / pgdown", "scroll the transcript"},
	}
	for _, k := range keys {
		sb.WriteString("  ")
		sb.WriteString(cmdStyle.Render(padRight(k[0], 18)))
		sb.WriteString(k[1])
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render("Commands"))
	sb.WriteString("\n")
	for _, cmd := range registry.GetAllCommands() {
		sb.WriteString("  ")
		sb.WriteString(cmdStyle.Render(padRight(cmd.Name, 18)))
		sb.WriteString(cmd.Description)
		sb.WriteString("\n")
	}

	sb.WriteString("\n:quit or esc closes this screen.\n")
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
