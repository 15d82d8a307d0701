package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProposalComponent lets the user review and edit a generated proposal
// draft before submitting it for an assignment.
type ProposalComponent struct {
	Width  int
	Height int

	assignmentID    int
	assignmentTitle string
	editor          textarea.Model
	loading         bool
	submitting      bool
	err             error
}

// NewProposalComponent creates the proposal editor
func NewProposalComponent(width, height int) *ProposalComponent {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Placeholder = "제안서 내용을 작성하세요"

	p := &ProposalComponent{editor: ta}
	p.SetSize(width, height)
	return p
}

// SetSize updates the dimensions
func (p *ProposalComponent) SetSize(width, height int) {
	p.Width = width
	p.Height = height
	p.editor.SetWidth(width - 4)
	editorHeight := height - 6
	if editorHeight < 3 {
		editorHeight = 3
	}
	p.editor.SetHeight(editorHeight)
}

// StartDraft resets the editor for a new draft that is being generated
func (p *ProposalComponent) StartDraft(assignmentID int, assignmentTitle string) {
	p.assignmentID = assignmentID
	p.assignmentTitle = assignmentTitle
	p.loading = true
	p.submitting = false
	p.err = nil
	p.editor.Reset()
	p.editor.Blur()
}

// SetDraft fills the editor with the generated draft
func (p *ProposalComponent) SetDraft(draft string) {
	p.loading = false
	p.editor.SetValue(strings.TrimSpace(draft))
	p.editor.Focus()
}

// SetError shows a draft or submit failure
func (p *ProposalComponent) SetError(err error) {
	p.loading = false
	p.submitting = false
	p.err = err
}

// SetSubmitting flags an in-flight submission
func (p *ProposalComponent) SetSubmitting() {
	p.submitting = true
	p.err = nil
}

// AssignmentID returns the assignment the draft targets
func (p *ProposalComponent) AssignmentID() int {
	return p.assignmentID
}

// Title returns the proposal title derived from the assignment
func (p *ProposalComponent) Title() string {
	return fmt.Sprintf("%s 제안서", p.assignmentTitle)
}

// Content returns the edited proposal text
func (p *ProposalComponent) Content() string {
	return strings.TrimSpace(p.editor.Value())
}

// Update handles messages for the proposal editor
func (p *ProposalComponent) Update(msg tea.Msg) tea.Cmd {
	if p.loading || p.submitting {
		return nil
	}
	var cmd tea.Cmd
	p.editor, cmd = p.editor.Update(msg)
	return cmd
}

// View renders the proposal editor
func (p *ProposalComponent) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.PromptBorder)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("제안서 작성 — %s", p.assignmentTitle)))
	sb.WriteString("\n\n")

	switch {
	case p.loading:
		sb.WriteString("대화 내용을 요약하는 중입니다...\n")
	case p.submitting:
		sb.WriteString("제안서를 제출하는 중입니다...\n")
	default:
		sb.WriteString(p.editor.View())
		sb.WriteString("\n\nctrl+s: 제출  esc: 취소\n")
	}

	if p.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(globalTheme.Error)
		sb.WriteString(errStyle.Render(fmt.Sprintf("\n%v\n", p.err)))
	}

	return globalTheme.Border.
		Width(p.Width - 2).
		Render(sb.String())
}
