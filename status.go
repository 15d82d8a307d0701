package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusComponent represents the status bar component
type StatusComponent struct {
	Width     int
	Style     lipgloss.Style
	Connected bool
	HasError  bool
	host      string
	userName  string
	userType  string
	mode      string

	// Transient notice shown in the middle section
	notice      string
	noticeUntil time.Time

	// Waiting indicator for an in-flight answer
	waitingForResponse bool
	waitingSince       time.Time
}

// NewStatusComponent creates a new status component
func NewStatusComponent(width int) StatusComponent {
	return StatusComponent{
		Width: width,
		Style: lipgloss.NewStyle().
			Foreground(globalTheme.TextColor),
		mode: "BROWSE",
	}
}

// SetServer sets the backend host and connection state
func (s *StatusComponent) SetServer(host string, connected bool) {
	s.host = host
	s.Connected = connected
}

// SetUser sets the signed-in user shown on the right
func (s *StatusComponent) SetUser(user *User) {
	if user == nil {
		s.userName = ""
		s.userType = ""
		return
	}
	s.userName = user.Name
	s.userType = user.UserType
}

// SetMode sets the mode label shown on the left
func (s *StatusComponent) SetMode(mode string) {
	s.mode = strings.ToUpper(mode)
}

// SetNotice shows a transient message in the middle section
func (s *StatusComponent) SetNotice(notice string, d time.Duration) {
	s.notice = notice
	s.noticeUntil = time.Now().Add(d)
}

// StartWaiting marks the status component as waiting for an answer
func (s *StatusComponent) StartWaiting() {
	s.waitingForResponse = true
	s.waitingSince = time.Now()
}

// StopWaiting clears the waiting indicator
func (s *StatusComponent) StopWaiting() {
	s.waitingForResponse = false
}

// SetError marks the status component as having an error
func (s *StatusComponent) SetError() {
	s.HasError = true
}

// ClearError clears the error state
func (s *StatusComponent) ClearError() {
	s.HasError = false
}

// SetWidth updates the width of the status component
func (s *StatusComponent) SetWidth(width int) {
	s.Width = width
}

func (s StatusComponent) statusIcon() string {
	if s.HasError {
		return "❌"
	}
	if s.Connected {
		return "✅"
	}
	return "🔌"
}

// View renders the status component
func (s StatusComponent) View() string {
	left := s.renderLeftSection()
	middle := s.renderMiddleSection()
	right := s.renderRightSection()

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	middleWidth := lipgloss.Width(middle)

	if leftWidth+middleWidth+rightWidth > s.Width {
		middle = ""
		middleWidth = 0
	}

	var statusLine string
	if middle != "" {
		total := leftWidth + middleWidth + rightWidth
		leftSpacing := (s.Width - total) / 2
		rightSpacing := s.Width - total - leftSpacing
		statusLine = left + strings.Repeat(" ", leftSpacing) + middle + strings.Repeat(" ", rightSpacing) + right
	} else {
		spacing := s.Width - leftWidth - rightWidth
		if spacing < 0 {
			spacing = 0
		}
		statusLine = left + strings.Repeat(" ", spacing) + right
	}

	return s.Style.
		Width(s.Width).
		Render(statusLine)
}

// renderLeftSection renders the mode label and waiting indicator
func (s StatusComponent) renderLeftSection() string {
	parts := []string{fmt.Sprintf(" %s", s.mode)}

	if s.waitingForResponse && !s.waitingSince.IsZero() {
		waitSeconds := int(time.Since(s.waitingSince).Seconds())
		if waitSeconds >= 3 {
			parts = append(parts, fmt.Sprintf("⏳ %ds", waitSeconds))
		}
	}
	return strings.Join(parts, " ")
}

// renderMiddleSection renders the transient notice, if still fresh
func (s StatusComponent) renderMiddleSection() string {
	if s.notice == "" || time.Now().After(s.noticeUntil) {
		return ""
	}
	noticeStyle := lipgloss.NewStyle().Foreground(globalTheme.Warning)
	return noticeStyle.Render(s.notice)
}

// renderRightSection renders the user and server connection state
func (s StatusComponent) renderRightSection() string {
	userStyle := lipgloss.NewStyle().Foreground(globalTheme.TextColor)

	who := "guest"
	if s.userName != "" {
		who = s.userName
		if s.userType == userTypeCompany {
			who += " 🏢"
		}
	}

	return fmt.Sprintf("%s %s %s ", userStyle.Render(who), s.host, s.statusIcon())
}
