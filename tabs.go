package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Persisted state keys. The layout matches what the web client kept in
// browser storage, so a database from either client round-trips.
const (
	kvKeyTabs      = "chatbotTabs"
	kvKeyActiveTab = "activeTabId"
)

// KeyValue is the storage abstraction TabManager persists through.
// storage.KVStore implements it over SQLite; tests inject an in-memory one.
type KeyValue interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// ConversationTab is one persisted conversation bound to a single
// assignment. The assignment snapshot is taken at creation time and never
// refetched; it may go stale relative to the backend.
type ConversationTab struct {
	ID              string     `json:"id"`
	AssignmentID    int        `json:"assignmentId"`
	AssignmentTitle string     `json:"assignmentTitle"`
	Assignment      Assignment `json:"assignment"`
	CreatedAt       string     `json:"createdAt"`
	Messages        []Message  `json:"messages"`
}

// TabManager owns the set of conversation tabs and the active-tab pointer.
// It is the single writer of both; every mutation is flushed to the
// key-value store before the call returns. A mutex guards the set because
// a streaming session appends characters from its own goroutine while the
// UI reads tabs to render.
type TabManager struct {
	mu     sync.Mutex
	kv     KeyValue
	logger *slog.Logger

	tabs     []ConversationTab
	activeID string
}

// NewTabManager creates a manager and restores the persisted tab set.
func NewTabManager(kv KeyValue, logger *slog.Logger) *TabManager {
	m := &TabManager{kv: kv, logger: logger}
	m.load()
	return m
}

// load restores tabs and the active pointer from storage. A corrupt tab
// blob resets both keys rather than leaving a half-usable state behind.
func (m *TabManager) load() {
	raw, ok, err := m.kv.Get(kvKeyTabs)
	if err != nil {
		m.logger.Warn("failed to load tabs", "error", err)
		return
	}
	if !ok {
		return
	}

	if err := json.Unmarshal([]byte(raw), &m.tabs); err != nil {
		m.logger.Warn("corrupt tab state, resetting", "error", err)
		m.tabs = nil
		if err := m.kv.Delete(kvKeyTabs); err != nil {
			m.logger.Warn("failed to clear tab state", "error", err)
		}
		if err := m.kv.Delete(kvKeyActiveTab); err != nil {
			m.logger.Warn("failed to clear active tab", "error", err)
		}
		return
	}

	savedActive, ok, err := m.kv.Get(kvKeyActiveTab)
	if err != nil {
		m.logger.Warn("failed to load active tab", "error", err)
	}

	switch {
	case ok && m.hasTab(savedActive):
		m.activeID = savedActive
	case len(m.tabs) > 0:
		// Stored pointer is stale or missing; fall back to the first tab.
		m.activeID = m.tabs[0].ID
		m.persistActive()
	default:
		m.activeID = ""
		if err := m.kv.Delete(kvKeyActiveTab); err != nil {
			m.logger.Warn("failed to clear active tab", "error", err)
		}
	}
}

func (m *TabManager) hasTab(id string) bool {
	for _, tab := range m.tabs {
		if tab.ID == id {
			return true
		}
	}
	return false
}

// persist flushes the tab set. Callers hold the mutex.
func (m *TabManager) persist() {
	data, err := json.Marshal(m.tabs)
	if err != nil {
		m.logger.Error("failed to marshal tabs", "error", err)
		return
	}
	if err := m.kv.Set(kvKeyTabs, string(data)); err != nil {
		m.logger.Error("failed to persist tabs", "error", err)
	}
}

// persistActive flushes the active pointer. Callers hold the mutex.
func (m *TabManager) persistActive() {
	if m.activeID == "" {
		if err := m.kv.Delete(kvKeyActiveTab); err != nil {
			m.logger.Error("failed to clear active tab", "error", err)
		}
		return
	}
	if err := m.kv.Set(kvKeyActiveTab, m.activeID); err != nil {
		m.logger.Error("failed to persist active tab", "error", err)
	}
}

// Tabs returns a copy of the tab set in creation order
func (m *TabManager) Tabs() []ConversationTab {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ConversationTab, len(m.tabs))
	copy(out, m.tabs)
	return out
}

// ActiveTabID returns the active tab id, or "" when no tab is selected
func (m *TabManager) ActiveTabID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// ActiveTab returns the active tab, if one is selected and still exists
func (m *TabManager) ActiveTab() (ConversationTab, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tab := range m.tabs {
		if tab.ID == m.activeID {
			return tab, true
		}
	}
	return ConversationTab{}, false
}

// FindExistingTab returns the tab bound to the given assignment, if any
func (m *TabManager) FindExistingTab(assignmentID int) (ConversationTab, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByAssignment(assignmentID)
}

func (m *TabManager) findByAssignment(assignmentID int) (ConversationTab, bool) {
	for _, tab := range m.tabs {
		if tab.AssignmentID == assignmentID {
			return tab, true
		}
	}
	return ConversationTab{}, false
}

// CreateOrSwitch activates the tab already bound to the assignment, or
// creates a new one seeded with a greeting. At most one tab exists per
// assignment. Returns the id of the now-active tab.
func (m *TabManager) CreateOrSwitch(assignment Assignment) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.findByAssignment(assignment.ID); ok {
		m.activeID = existing.ID
		m.persistActive()
		return existing.ID
	}

	tab := ConversationTab{
		ID:              fmt.Sprintf("tab_%d_%d", assignment.ID, time.Now().UnixMilli()),
		AssignmentID:    assignment.ID,
		AssignmentTitle: assignment.Title,
		Assignment:      assignment,
		CreatedAt:       time.Now().Format(time.RFC3339),
		Messages: []Message{
			{Role: roleAI, Content: fmt.Sprintf("안녕하세요! %q 과제에 대해 무엇이든 물어보세요!", assignment.Title)},
		},
	}

	m.tabs = append(m.tabs, tab)
	m.activeID = tab.ID
	m.persist()
	m.persistActive()
	return tab.ID
}

// Close removes a tab. When the active tab is closed the first remaining
// tab becomes active, or no tab when none remain.
func (m *TabManager) Close(tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tabs[:0]
	for _, tab := range m.tabs {
		if tab.ID != tabID {
			kept = append(kept, tab)
		}
	}
	m.tabs = kept
	m.persist()

	if m.activeID == tabID {
		if len(m.tabs) > 0 {
			m.activeID = m.tabs[0].ID
		} else {
			m.activeID = ""
		}
		m.persistActive()
	}
}

// SetActive switches the active tab. An id not present in the set is
// ignored; activating a ghost tab would strand the UI.
func (m *TabManager) SetActive(tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasTab(tabID) {
		m.logger.Warn("ignoring switch to unknown tab", "tab_id", tabID)
		return
	}
	m.activeID = tabID
	m.persistActive()
}

// Messages returns a copy of a tab's message log
func (m *TabManager) Messages(tabID string) ([]Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tab := range m.tabs {
		if tab.ID == tabID {
			out := make([]Message, len(tab.Messages))
			copy(out, tab.Messages)
			return out, true
		}
	}
	return nil, false
}

// Tab returns a copy of the tab with the given id
func (m *TabManager) Tab(tabID string) (ConversationTab, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tab := range m.tabs {
		if tab.ID == tabID {
			return tab, true
		}
	}
	return ConversationTab{}, false
}

// UpdateMessages replaces a tab's message log wholesale and persists the
// set. This is the single persistence hook for ConversationStore.
func (m *TabManager) UpdateMessages(tabID string, messages []Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tabs {
		if m.tabs[i].ID == tabID {
			m.tabs[i].Messages = messages
			m.persist()
			return
		}
	}
}
