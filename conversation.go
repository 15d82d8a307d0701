package main

// Message roles. The transcript knows exactly two speakers.
const (
	roleUser = "user"
	roleAI   = "ai"
)

// Message is one transcript entry. Messages are immutable once appended,
// except the most recent AI message which grows character by character
// while an answer streams in.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationStore offers message-log operations over the tabs owned by a
// TabManager. All mutations route through TabManager.UpdateMessages, which
// persists the whole tab set synchronously, so a reload always observes a
// consistent prefix of what was revealed.
type ConversationStore struct {
	tabs *TabManager
}

// NewConversationStore creates a store over the given tab manager
func NewConversationStore(tabs *TabManager) *ConversationStore {
	return &ConversationStore{tabs: tabs}
}

// Append adds a message to the end of the tab's log and returns the new
// list. An unknown tab id is a silent no-op returning nil; other tabs are
// never touched.
func (s *ConversationStore) Append(tabID string, msg Message) []Message {
	messages, ok := s.tabs.Messages(tabID)
	if !ok {
		return nil
	}
	messages = append(messages, msg)
	s.tabs.UpdateMessages(tabID, messages)
	return messages
}

// MutateLastIfRole replaces the tab's last message with mutate(last) when
// that message has the given role; otherwise it is a no-op. Used both to
// grow the in-progress AI message and to overwrite it with an error text.
func (s *ConversationStore) MutateLastIfRole(tabID, role string, mutate func(Message) Message) []Message {
	messages, ok := s.tabs.Messages(tabID)
	if !ok || len(messages) == 0 {
		return nil
	}
	last := len(messages) - 1
	if messages[last].Role != role {
		return messages
	}
	messages[last] = mutate(messages[last])
	s.tabs.UpdateMessages(tabID, messages)
	return messages
}

// Replace swaps the tab's message log wholesale
func (s *ConversationStore) Replace(tabID string, messages []Message) []Message {
	if _, ok := s.tabs.Messages(tabID); !ok {
		return nil
	}
	s.tabs.UpdateMessages(tabID, messages)
	return messages
}
