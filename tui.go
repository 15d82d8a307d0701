package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moa-works/moa-cli/storage"
)

// View identifies the main content view
type View int

const (
	ViewBrowse View = iota
	ViewChat
	ViewProposal
	ViewHelp
)

const (
	promptHeight = 3
	statusHeight = 1
)

// Messages exchanged with async work

type assignmentsLoadedMsg struct{ assignments []Assignment }
type assignmentsErrorMsg struct{ err error }
type loginResultMsg struct {
	user *User
	err  error
}
type summaryReadyMsg struct {
	assignmentID int
	draft        string
}
type summaryErrorMsg struct{ err error }
type proposalSubmittedMsg struct{}
type proposalErrorMsg struct{ err error }
type updateResultMsg struct{ err error }
type healthCheckMsg struct{ err error }
type statusTickMsg time.Time

// TUIModel is the root bubbletea model
type TUIModel struct {
	config  *Config
	api     *APIClient
	auth    *AuthSession
	tabs    *TabManager
	session *ChatSession
	history *storage.HistoryStore
	logger  *slog.Logger

	width  int
	height int

	activeView View
	// view to return to when an overlay (help, proposal) closes
	previousView View

	browse   *BrowseComponent
	chat     *ChatComponent
	prompt   PromptComponent
	status   StatusComponent
	help     *HelpComponent
	proposal *ProposalComponent

	registry CommandRegistry
}

// NewTUIModel creates the root model and wires the components together
func NewTUIModel(config *Config, api *APIClient, auth *AuthSession, tabs *TabManager, history *storage.HistoryStore, logger *slog.Logger) *TUIModel {
	NewTheme()

	registry := NewCommandRegistry()

	m := &TUIModel{
		config:     config,
		api:        api,
		auth:       auth,
		tabs:       tabs,
		history:    history,
		logger:     logger,
		activeView: ViewBrowse,
		browse:     NewBrowseComponent(80, 20),
		chat:       NewChatComponent(tabs, 80, 20, config.UI.MarkdownEnabled),
		prompt:     NewPromptComponent(80, promptHeight),
		status:     NewStatusComponent(80),
		proposal:   NewProposalComponent(80, 20),
		registry:   registry,
	}
	m.help = NewHelpComponent(80, 20, registry)

	m.session = NewChatSession(api, tabs, config, func(msg any) {
		if program != nil {
			program.Send(msg)
		}
	}, logger)

	m.status.SetServer(api.Host(), false)
	m.status.SetUser(auth.User())
	m.prompt.TextArea.Placeholder = PlaceholderBrowse

	if history != nil && config.History.Enabled {
		prompts, err := history.LoadPrompts(api.Host(), 100)
		if err != nil {
			logger.Warn("failed to load prompt history", "error", err)
		} else {
			m.prompt.SetHistory(prompts)
		}
	}

	// Reopen the chat view when tabs survived the previous run
	if tabs.ActiveTabID() != "" {
		m.showChat()
	}

	return m
}

// Init starts the initial async work
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadAssignments(),
		m.checkHealth(),
		m.tick(),
	)
}

// Update handles all messages
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case statusTickMsg:
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case assignmentsLoadedMsg:
		m.browse.SetAssignments(msg.assignments)
		return m, nil

	case assignmentsErrorMsg:
		m.browse.SetError(msg.err)
		m.status.SetError()
		return m, nil

	case healthCheckMsg:
		m.status.SetServer(m.api.Host(), msg.err == nil)
		if msg.err != nil {
			m.logger.Warn("backend health check failed", "error", msg.err)
		}
		return m, nil

	case loginResultMsg:
		if msg.err != nil {
			m.showNotice(fmt.Sprintf("login failed: %v", msg.err))
			return m, nil
		}
		if err := m.auth.SignIn(*msg.user); err != nil {
			m.showNotice(fmt.Sprintf("login failed: %v", err))
			return m, nil
		}
		m.api.SetToken(m.auth.Token())
		m.status.SetUser(m.auth.User())
		m.showNotice(fmt.Sprintf("%s님 환영합니다", msg.user.Name))
		return m, nil

	case streamStartedMsg:
		m.status.StartWaiting()
		m.chat.Refresh()
		return m, nil

	case streamProgressMsg:
		if msg.tabID == m.tabs.ActiveTabID() {
			m.chat.Refresh()
		}
		return m, nil

	case streamFinishedMsg:
		m.status.StopWaiting()
		m.chat.Refresh()
		switch msg.state {
		case StateErrored:
			m.status.SetError()
		case StateCancelled:
			m.showNotice("답변 생성이 중단되었습니다")
		default:
			m.status.ClearError()
		}
		return m, nil

	case summaryReadyMsg:
		if m.activeView == ViewProposal && m.proposal.AssignmentID() == msg.assignmentID {
			m.proposal.SetDraft(msg.draft)
		}
		return m, nil

	case summaryErrorMsg:
		if m.activeView == ViewProposal {
			m.proposal.SetError(msg.err)
		}
		return m, nil

	case proposalSubmittedMsg:
		m.closeOverlay()
		m.showNotice("제안서가 제출되었습니다")
		return m, nil

	case proposalErrorMsg:
		m.proposal.SetError(msg.err)
		return m, nil

	case updateAvailableMsg:
		m.showNotice("새 버전이 있습니다. :update 로 업데이트하세요")
		return m, nil

	case showHelpMsg:
		m.previousView = m.activeView
		m.activeView = ViewHelp
		m.status.SetMode("help")
		return m, nil

	case updateResultMsg:
		if msg.err != nil {
			m.showNotice(fmt.Sprintf("update failed: %v", msg.err))
		} else {
			m.showNotice("updated, restart to use the new version")
		}
		return m, nil
	}

	return m, m.routeToComponents(msg)
}

// handleKey routes key presses by the active view
func (m *TUIModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global bindings first
	switch msg.String() {
	case "ctrl+c":
		if m.session.Busy() {
			m.session.Cancel()
			return m, nil
		}
		return m, tea.Quit
	}

	switch m.activeView {
	case ViewHelp:
		switch msg.String() {
		case "esc", "q":
			m.closeOverlay()
			return m, nil
		}
		var cmd tea.Cmd
		m.help.Viewport, cmd = m.help.Viewport.Update(msg)
		return m, cmd

	case ViewProposal:
		switch msg.String() {
		case "esc":
			m.closeOverlay()
			return m, nil
		case "ctrl+s":
			return m, m.submitProposal()
		}
		return m, m.proposal.Update(msg)

	case ViewBrowse:
		switch msg.String() {
		case "up":
			m.browse.MoveUp()
			return m, nil
		case "down":
			m.browse.MoveDown()
			return m, nil
		case "esc":
			if m.browse.showDetail {
				m.browse.ToggleDetail()
				return m, nil
			}
			if m.tabs.ActiveTabID() != "" {
				m.showChat()
			}
			return m, nil
		case "enter":
			input := strings.TrimSpace(m.prompt.Value())
			if strings.HasPrefix(input, ":") {
				return m, m.runCommand(input)
			}
			if m.browse.showDetail {
				if a := m.browse.Selected(); a != nil {
					m.openChat(*a)
				}
				return m, nil
			}
			m.browse.ToggleDetail()
			return m, nil
		}
		// Everything else goes into the prompt so commands can be typed
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd

	case ViewChat:
		switch msg.String() {
		case "esc":
			m.showBrowse()
			return m, nil
		case "tab":
			m.cycleTab(1)
			return m, nil
		case "shift+tab":
			m.cycleTab(-1)
			return m, nil
		case "enter":
			return m, m.handleSend()
		case "pgup", "pgdown", "home", "end":
			var cmd tea.Cmd
			*m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	return m, nil
}

// routeToComponents forwards non-key messages (mouse, blink) to the
// active components
func (m *TUIModel) routeToComponents(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.activeView == ViewChat {
		*m.chat, cmd = m.chat.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.prompt, cmd = m.prompt.Update(msg)
	cmds = append(cmds, cmd)

	return tea.Batch(cmds...)
}

// handleSend submits the prompt: a colon command or a chat message
func (m *TUIModel) handleSend() tea.Cmd {
	input := strings.TrimSpace(m.prompt.Value())
	if input == "" {
		return nil
	}

	if strings.HasPrefix(input, ":") {
		return m.runCommand(input)
	}

	tabID := m.tabs.ActiveTabID()
	if tabID == "" {
		m.showNotice("먼저 과제를 선택하세요")
		return nil
	}

	if err := m.session.SendMessage(tabID, input); err != nil {
		if errors.Is(err, ErrSessionBusy) {
			m.showNotice("답변을 생성하는 중입니다. 잠시만 기다려주세요")
		} else {
			m.showNotice(fmt.Sprintf("전송 실패: %v", err))
		}
		return nil
	}

	m.prompt.PushHistory(input)
	if m.history != nil && m.config.History.Enabled {
		if err := m.history.AppendPrompt(m.api.Host(), input); err != nil {
			m.logger.Warn("failed to save prompt history", "error", err)
		}
	}

	m.prompt.Reset()
	m.chat.Refresh()
	m.chat.ScrollToBottom()
	return nil
}

// runCommand parses and dispatches a colon command
func (m *TUIModel) runCommand(input string) tea.Cmd {
	m.prompt.Reset()

	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}

	cmd, matches, found := m.registry.FindCommand(fields[0])
	if !found {
		if len(matches) > 1 {
			m.showNotice(fmt.Sprintf("ambiguous command, matches: %s", strings.Join(matches, " ")))
		} else {
			m.showNotice(fmt.Sprintf("unknown command %s", fields[0]))
		}
		return nil
	}

	return cmd.Handler(m, fields[1:])
}

// openChat opens (or switches to) the conversation tab for the assignment
func (m *TUIModel) openChat(a Assignment) {
	tabID := m.tabs.CreateOrSwitch(a)
	m.logger.Debug("opened conversation", "tab_id", tabID, "assignment", a.ID)
	m.showChat()
}

func (m *TUIModel) showChat() {
	m.activeView = ViewChat
	m.status.SetMode("chat")
	m.prompt.TextArea.Placeholder = PlaceholderChat
	m.chat.Refresh()
	m.chat.ScrollToBottom()
}

func (m *TUIModel) showBrowse() {
	m.activeView = ViewBrowse
	m.status.SetMode("browse")
	m.prompt.TextArea.Placeholder = PlaceholderBrowse
}

func (m *TUIModel) closeOverlay() {
	if m.previousView == ViewChat {
		m.showChat()
	} else {
		m.showBrowse()
	}
}

// switchTab activates a tab, optionally aborting an in-flight answer
func (m *TUIModel) switchTab(tabID string) {
	if m.config.Chat.AbortOnTabSwitch && m.session.Busy() && m.session.StreamingTab() != tabID {
		m.session.Cancel()
	}
	m.tabs.SetActive(tabID)
	m.showChat()
}

// cycleTab moves to the adjacent tab in the given direction
func (m *TUIModel) cycleTab(direction int) {
	tabs := m.tabs.Tabs()
	if len(tabs) < 2 {
		return
	}
	active := m.tabs.ActiveTabID()
	for i, tab := range tabs {
		if tab.ID == active {
			next := (i + direction + len(tabs)) % len(tabs)
			m.switchTab(tabs[next].ID)
			return
		}
	}
}

// startProposalDraft opens the proposal editor, seeded by the backend's
// summary of the active conversation
func (m *TUIModel) startProposalDraft() tea.Cmd {
	tab, ok := m.tabs.Tab(m.tabs.ActiveTabID())
	if !ok || tab.Assignment.ID == 0 {
		m.showNotice("과제가 연결된 대화가 아닙니다")
		return nil
	}
	if m.session.Busy() {
		m.showNotice("답변을 생성하는 중입니다. 잠시만 기다려주세요")
		return nil
	}

	m.previousView = m.activeView
	m.activeView = ViewProposal
	m.status.SetMode("proposal")
	m.proposal.StartDraft(tab.Assignment.ID, tab.AssignmentTitle)

	lines := make([]string, 0, len(tab.Messages))
	for _, msg := range tab.Messages {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	totalContent := strings.Join(lines, "\n")
	assignmentID := tab.Assignment.ID

	return func() tea.Msg {
		draft, err := m.api.SummaryChat(context.Background(), assignmentID, totalContent)
		if err != nil {
			return summaryErrorMsg{err: err}
		}
		return summaryReadyMsg{assignmentID: assignmentID, draft: draft}
	}
}

// submitProposal sends the edited draft to the backend
func (m *TUIModel) submitProposal() tea.Cmd {
	content := m.proposal.Content()
	if content == "" {
		m.proposal.SetError(fmt.Errorf("제안서 내용이 비어 있습니다"))
		return nil
	}
	if !m.auth.SignedIn() {
		m.proposal.SetError(fmt.Errorf("로그인이 필요합니다 (:login)"))
		return nil
	}

	m.proposal.SetSubmitting()
	proposal := Proposal{
		AssignmentID: m.proposal.AssignmentID(),
		Title:        m.proposal.Title(),
		Content:      content,
	}

	return func() tea.Msg {
		if _, err := m.api.SubmitProposal(context.Background(), proposal); err != nil {
			return proposalErrorMsg{err: err}
		}
		return proposalSubmittedMsg{}
	}
}

func (m *TUIModel) showNotice(notice string) {
	m.status.SetNotice(notice, 4*time.Second)
}

// loadAssignments fetches the marketplace listing
func (m *TUIModel) loadAssignments() tea.Cmd {
	return func() tea.Msg {
		assignments, err := m.api.Assignments(context.Background())
		if err != nil {
			return assignmentsErrorMsg{err: err}
		}
		return assignmentsLoadedMsg{assignments: assignments}
	}
}

// checkHealth pings the backend
func (m *TUIModel) checkHealth() tea.Cmd {
	return func() tea.Msg {
		return healthCheckMsg{err: m.api.Health(context.Background())}
	}
}

// tick keeps the status line (waiting timer, notices) fresh
func (m *TUIModel) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

// resize lays the components out for the new terminal size
func (m *TUIModel) resize(width, height int) {
	m.width = width
	m.height = height

	contentHeight := height - statusHeight - promptHeight - 2 // prompt borders
	if contentHeight < 1 {
		contentHeight = 1
	}

	m.browse.SetSize(width, contentHeight)
	m.chat.SetSize(width, contentHeight)
	m.proposal.SetSize(width, contentHeight)
	m.help.SetSize(width, contentHeight, m.registry)
	m.prompt.SetWidth(width - 2)
	m.status.SetWidth(width)
}

// View renders the whole screen
func (m *TUIModel) View() string {
	var content string
	switch m.activeView {
	case ViewBrowse:
		content = m.browse.View()
	case ViewChat:
		content = m.chat.View()
	case ViewProposal:
		content = m.proposal.View()
	case ViewHelp:
		content = m.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		content,
		m.prompt.View(),
		m.status.View(),
	)
}
