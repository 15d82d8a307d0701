package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Command represents a colon command
type Command struct {
	Name        string
	Description string
	Handler     func(*TUIModel, []string) tea.Cmd
}

// CommandRegistry holds all available commands
type CommandRegistry struct {
	Commands map[string]Command
	order    []string
}

func normalizeCommandName(name string) string {
	if name == "" {
		return ""
	}
	return ":" + strings.TrimPrefix(name, ":")
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() CommandRegistry {
	registry := CommandRegistry{
		Commands: make(map[string]Command),
	}

	registry.RegisterCommand(":help", "Show help", handleHelpCommand)
	registry.RegisterCommand(":login", "Sign in (usage: :login <email> <password>)", handleLoginCommand)
	registry.RegisterCommand(":logout", "Sign out", handleLogoutCommand)
	registry.RegisterCommand(":browse", "Back to the assignment list", handleBrowseCommand)
	registry.RegisterCommand(":refresh", "Reload assignments from the server", handleRefreshCommand)
	registry.RegisterCommand(":switch", "Switch conversation tab (usage: :switch <n>)", handleSwitchCommand)
	registry.RegisterCommand(":close", "Close the active conversation tab", handleCloseCommand)
	registry.RegisterCommand(":summary", "Draft a proposal from the active conversation", handleSummaryCommand)
	registry.RegisterCommand(":update", "Update to the latest release", handleUpdateCommand)
	registry.RegisterCommand(":quit", "Quit the application", handleQuitCommand)

	return registry
}

// RegisterCommand registers a new command
func (cr *CommandRegistry) RegisterCommand(name, description string, handler func(*TUIModel, []string) tea.Cmd) {
	normalized := normalizeCommandName(name)
	if normalized == "" {
		return
	}
	if _, exists := cr.Commands[normalized]; !exists {
		cr.order = append(cr.order, normalized)
	}
	cr.Commands[normalized] = Command{
		Name:        normalized,
		Description: description,
		Handler:     handler,
	}
}

// FindCommand finds commands by prefix (like vim).
// Returns:
// - exactMatch: the matched command if exactly one match is found
// - matches: all commands that start with the prefix
// - found: true if exactly one match was found
func (cr CommandRegistry) FindCommand(prefix string) (exactMatch Command, matches []string, found bool) {
	normalized := normalizeCommandName(prefix)
	if normalized == "" {
		return Command{}, nil, false
	}

	if cmd, exists := cr.Commands[normalized]; exists {
		return cmd, []string{normalized}, true
	}

	var matchedCommands []string
	searchPrefix := strings.TrimPrefix(normalized, ":")

	for _, cmdName := range cr.order {
		if strings.HasPrefix(strings.TrimPrefix(cmdName, ":"), searchPrefix) {
			matchedCommands = append(matchedCommands, cmdName)
		}
	}

	if len(matchedCommands) == 1 {
		cmd := cr.Commands[matchedCommands[0]]
		return cmd, matchedCommands, true
	}

	return Command{}, matchedCommands, false
}

// GetAllCommands returns all registered commands
func (cr CommandRegistry) GetAllCommands() []Command {
	var commands []Command
	for _, name := range cr.order {
		if cmd, ok := cr.Commands[name]; ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

// Command handlers

type showHelpMsg struct{}

func handleHelpCommand(model *TUIModel, args []string) tea.Cmd {
	return func() tea.Msg {
		return showHelpMsg{}
	}
}

func handleLoginCommand(model *TUIModel, args []string) tea.Cmd {
	if len(args) < 2 {
		model.showNotice("usage: :login <email> <password>")
		return nil
	}
	email, password := args[0], args[1]
	return func() tea.Msg {
		user, err := model.api.Login(context.Background(), email, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{user: user}
	}
}

func handleLogoutCommand(model *TUIModel, args []string) tea.Cmd {
	if err := model.auth.SignOut(); err != nil {
		model.showNotice(fmt.Sprintf("logout failed: %v", err))
		return nil
	}
	model.api.SetToken("")
	model.status.SetUser(nil)
	model.showNotice("signed out")
	return nil
}

func handleBrowseCommand(model *TUIModel, args []string) tea.Cmd {
	model.showBrowse()
	return nil
}

func handleRefreshCommand(model *TUIModel, args []string) tea.Cmd {
	model.browse.list.SetLoading(true)
	return model.loadAssignments()
}

func handleSwitchCommand(model *TUIModel, args []string) tea.Cmd {
	if len(args) < 1 {
		model.showNotice("usage: :switch <n>")
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		model.showNotice("tab number must be a number")
		return nil
	}
	tabs := model.tabs.Tabs()
	if n < 1 || n > len(tabs) {
		model.showNotice(fmt.Sprintf("no tab %d", n))
		return nil
	}
	model.switchTab(tabs[n-1].ID)
	return nil
}

func handleCloseCommand(model *TUIModel, args []string) tea.Cmd {
	active := model.tabs.ActiveTabID()
	if active == "" {
		model.showNotice("no open conversation")
		return nil
	}
	model.tabs.Close(active)
	model.chat.Refresh()
	if len(model.tabs.Tabs()) == 0 {
		model.showBrowse()
	}
	return nil
}

func handleSummaryCommand(model *TUIModel, args []string) tea.Cmd {
	return model.startProposalDraft()
}

func handleUpdateCommand(model *TUIModel, args []string) tea.Cmd {
	return func() tea.Msg {
		if err := SelfUpdate(version); err != nil {
			return updateResultMsg{err: err}
		}
		return updateResultMsg{}
	}
}

func handleQuitCommand(model *TUIModel, args []string) tea.Cmd {
	// From a secondary view, return to the main one instead of quitting
	if model.activeView != ViewChat && model.activeView != ViewBrowse {
		model.closeOverlay()
		return nil
	}
	return tea.Quit
}
