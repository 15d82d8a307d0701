package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	userIndentSpaces = 8
	maxTabTitleWidth = 18
)

// ChatComponent renders the tabbed conversation view: a tab bar on top and
// the active tab's transcript in a viewport below it.
type ChatComponent struct {
	Viewport     viewport.Model
	Width        int
	Height       int
	Style        lipgloss.Style
	AutoScroll   bool
	UserScrolled bool

	tabs     *TabManager
	tabBar   string
	messages []Message

	// Markdown rendering
	markdownRenderer *glamour.TermRenderer
	markdownEnabled  bool
}

// NewChatComponent creates a new chat component over the tab manager
func NewChatComponent(tabs *TabManager, width, height int, markdownEnabled bool) *ChatComponent {
	vp := viewport.New(width, height)

	var renderer *glamour.TermRenderer
	if markdownEnabled {
		rendererStart := time.Now()
		var err error
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0), // 0 disables glamour's word wrapping
		)
		slog.Debug("markdown renderer initialized", "load time", time.Since(rendererStart), "err", err)
	}

	c := &ChatComponent{
		Viewport:         vp,
		Width:            width,
		Height:           height,
		AutoScroll:       true,
		markdownRenderer: renderer,
		markdownEnabled:  markdownEnabled,
		tabs:             tabs,
		Style: lipgloss.NewStyle().
			Width(width).
			Height(height),
	}
	c.Refresh()
	return c
}

// SetSize updates the width & height of the chat component
func (c *ChatComponent) SetSize(width, height int) {
	c.Width = width
	c.Style = c.Style.Width(width)
	c.Viewport.Width = width

	if height < 0 {
		height = 0
	}
	// The tab bar takes one line
	c.Height = height
	c.Style = c.Style.Height(height)
	c.Viewport.Height = height - 1
	if c.Viewport.Height < 0 {
		c.Viewport.Height = 0
	}
	c.Refresh()
}

// Refresh re-reads the active tab and redraws the tab bar and transcript
func (c *ChatComponent) Refresh() {
	c.tabBar = c.renderTabBar()
	c.messages, _ = c.tabs.Messages(c.tabs.ActiveTabID())
	c.updateContent()
}

// ScrollToBottom scrolls to the latest message
func (c *ChatComponent) ScrollToBottom() {
	c.Viewport.GotoBottom()
	c.UserScrolled = false
	c.AutoScroll = true
}

// renderTabBar draws one line of tab titles, the active one highlighted
func (c *ChatComponent) renderTabBar() string {
	tabs := c.tabs.Tabs()
	if len(tabs) == 0 {
		return lipgloss.NewStyle().
			Foreground(globalTheme.DarkBorder).
			Render(" no open conversations ")
	}

	activeID := c.tabs.ActiveTabID()
	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.PaneBackground).
		Background(globalTheme.ChatBorder).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(globalTheme.TextColor).
		Padding(0, 1)

	var parts []string
	for i, tab := range tabs {
		title := tab.AssignmentTitle
		if len([]rune(title)) > maxTabTitleWidth {
			title = string([]rune(title)[:maxTabTitleWidth-1]) + "…"
		}
		label := fmt.Sprintf("%d %s", i+1, title)
		if tab.ID == activeID {
			parts = append(parts, activeStyle.Render(label))
		} else {
			parts = append(parts, inactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// updateContent updates the viewport content based on the messages
func (c *ChatComponent) updateContent() {
	var messageViews []string
	for _, message := range c.messages {
		switch message.Role {
		case roleUser:
			messageStyle := lipgloss.NewStyle().
				Foreground(globalTheme.PromptBorder)

			wrapWidth := c.Width
			if wrapWidth > userIndentSpaces {
				wrapWidth -= userIndentSpaces
			}
			if wrapWidth < 1 {
				wrapWidth = 1
			}

			wrapped := wordwrap.String(message.Content, wrapWidth)
			indent := strings.Repeat(" ", userIndentSpaces)
			lines := strings.Split(wrapped, "\n")
			for i := range lines {
				lines[i] = indent + lines[i]
			}

			messageViews = append(messageViews,
				messageStyle.Render(strings.Join(lines, "\n")))
		case roleAI:
			messageViews = append(messageViews, c.renderMarkdown(message.Content))
		default:
			messageStyle := lipgloss.NewStyle().
				Foreground(globalTheme.TextColor).
				Padding(0, 1)
			messageViews = append(messageViews,
				messageStyle.Render(wordwrap.String(message.Content, c.Width)))
		}
	}
	content := lipgloss.JoinVertical(lipgloss.Left, messageViews...)
	c.Viewport.SetContent(content)

	// Only auto-scroll if user hasn't manually scrolled
	if c.AutoScroll && !c.UserScrolled {
		c.Viewport.GotoBottom()
	}
}

// renderMarkdown renders markdown content with glamour
func (c *ChatComponent) renderMarkdown(content string) string {
	if !c.markdownEnabled || c.markdownRenderer == nil {
		return c.renderPlainText(content)
	}

	rendered, err := c.markdownRenderer.Render(content)
	if err != nil {
		// Fallback to plain text on error
		return c.renderPlainText(content)
	}

	// Glamour is configured with WordWrap(0) to disable its internal
	// wrapping, so we wrap here using the current viewport width.
	// wordwrap.String() preserves ANSI escape sequences, allowing proper
	// re-wrapping on terminal resize without recreating the renderer.
	wrapped := wordwrap.String(rendered, c.Width-2)

	return strings.TrimSpace(wrapped)
}

func (c *ChatComponent) renderPlainText(content string) string {
	width := c.Width - 2
	if width < 1 {
		width = 1
	}
	return strings.TrimSpace(wordwrap.String(content, width))
}

// Update handles messages for the chat component
func (c ChatComponent) Update(msg tea.Msg) (ChatComponent, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			c.Viewport.ScrollUp(1)
			c.UserScrolled = true
		case tea.MouseWheelDown:
			c.Viewport.ScrollDown(1)
			if c.Viewport.AtBottom() {
				c.UserScrolled = false
				c.AutoScroll = true
			} else {
				c.UserScrolled = true
			}
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			c.Viewport.ScrollUp(1)
			c.UserScrolled = true
		case "down":
			c.Viewport.ScrollDown(1)
			if c.Viewport.AtBottom() {
				c.UserScrolled = false
				c.AutoScroll = true
			} else {
				c.UserScrolled = true
			}
		case "pgup":
			c.Viewport.HalfPageUp()
			c.UserScrolled = true
		case "pgdown":
			c.Viewport.HalfPageDown()
			if c.Viewport.AtBottom() {
				c.UserScrolled = false
				c.AutoScroll = true
			} else {
				c.UserScrolled = true
			}
		case "home":
			c.Viewport.GotoTop()
			c.UserScrolled = true
		case "end":
			c.ScrollToBottom()
		}
	}
	c.Viewport, cmd = c.Viewport.Update(msg)
	return c, cmd
}

// View renders the chat component
func (c ChatComponent) View() string {
	return c.Style.Render(c.tabBar + "\n" + c.Viewport.View())
}
