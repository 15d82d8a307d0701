package main

import "github.com/charmbracelet/lipgloss"

// globalTheme is the application-wide theme instance
var globalTheme *Theme

// Theme defines the colors and styles for the UI.
type Theme struct {
	PromptBorder     lipgloss.Color
	ChatBorder       lipgloss.Color
	TextColor        lipgloss.Color
	Warning          lipgloss.Color
	Error            lipgloss.Color
	PromptBackground lipgloss.Color
	PaneBackground   lipgloss.Color
	DarkBorder       lipgloss.Color

	// Prompt focus indicators
	PromptOnBorder  lipgloss.Color
	PromptOffBorder lipgloss.Color

	// Text rendering
	RenderAI     func(string) lipgloss.Style
	RenderUser   func(string) lipgloss.Style
	RenderSystem func(string) lipgloss.Style

	// Borders and highlights
	Border    lipgloss.Style
	Highlight lipgloss.Style
}

// NewTheme creates and returns a new Theme.
// It also sets the global theme instance.
func NewTheme() *Theme {
	promptBorder := lipgloss.Color("#F952F9")
	chatBorder := lipgloss.Color("#F4DB53")
	textColor := lipgloss.Color("#01FAFA")
	warning := lipgloss.Color("#F4DB53")
	errorColor := lipgloss.Color("#F54545")
	promptBackground := lipgloss.Color("#271D30")
	paneBackground := lipgloss.Color("#000000")
	darkBorder := lipgloss.Color("#373702")

	theme := &Theme{
		PromptBorder:     promptBorder,
		ChatBorder:       chatBorder,
		TextColor:        textColor,
		Warning:          warning,
		Error:            errorColor,
		PromptBackground: promptBackground,
		PaneBackground:   paneBackground,
		DarkBorder:       darkBorder,

		PromptOnBorder:  chatBorder,
		PromptOffBorder: darkBorder,

		RenderAI: func(text string) lipgloss.Style {
			return lipgloss.NewStyle().Foreground(textColor).SetString(text)
		},
		RenderUser: func(text string) lipgloss.Style {
			return lipgloss.NewStyle().Foreground(promptBorder).SetString(text)
		},
		RenderSystem: func(text string) lipgloss.Style {
			return lipgloss.NewStyle().Foreground(chatBorder).SetString(text)
		},

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(chatBorder),

		Highlight: lipgloss.NewStyle().
			Foreground(textColor).
			Background(promptBackground),
	}

	globalTheme = theme

	return theme
}
