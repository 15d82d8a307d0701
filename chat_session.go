package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// streamErrorFallback replaces the in-progress AI message when the answer
// request itself fails. Individual malformed lines never trigger it.
const streamErrorFallback = "죄송합니다. 오류가 발생했습니다. 다시 시도해주세요."

// ErrSessionBusy is returned when a send is attempted while an answer is
// already streaming. One request at a time; extra attempts are rejected,
// not queued.
var ErrSessionBusy = errors.New("a message is already being answered")

// SessionState tracks where a send-message request is in its lifecycle.
type SessionState int

const (
	StateIdle SessionState = iota
	StateComposing
	StateStreaming
	StateCompleted
	StateErrored
	StateCancelled
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComposing:
		return "composing"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// NotifyFunc delivers progress messages to the UI loop
type NotifyFunc func(any)

// notification messages
type streamStartedMsg struct{ tabID string }
type streamProgressMsg struct{ tabID string }
type streamFinishedMsg struct {
	tabID string
	state SessionState
	err   error
}

// ChatSession orchestrates send-message requests end to end: it composes
// the request from the tab's transcript and assignment snapshot, drives the
// stream decoder over the response body, paces each token through the
// emitter and lands every character in the conversation store. One session
// serves the whole UI; the busy flag admits one in-flight request at a time.
type ChatSession struct {
	api    *APIClient
	store  *ConversationStore
	tabs   *TabManager
	notify NotifyFunc
	logger *slog.Logger

	revealDelay   time.Duration
	streamTimeout time.Duration

	mu     sync.Mutex
	state  SessionState
	busy   bool
	cancel context.CancelFunc
	// tabID of the in-flight request; streaming continues against this
	// tab even when the UI switches away mid-stream.
	streamingTab string
}

// NewChatSession wires a session over the given collaborators
func NewChatSession(api *APIClient, tabs *TabManager, cfg *Config, notify NotifyFunc, logger *slog.Logger) *ChatSession {
	return &ChatSession{
		api:           api,
		store:         NewConversationStore(tabs),
		tabs:          tabs,
		notify:        notify,
		logger:        logger,
		revealDelay:   time.Duration(cfg.Chat.RevealDelayMs) * time.Millisecond,
		streamTimeout: time.Duration(cfg.Chat.StreamTimeoutSeconds) * time.Second,
		state:         StateIdle,
	}
}

// State returns the current lifecycle state
func (s *ChatSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a request is in flight
func (s *ChatSession) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// StreamingTab returns the tab the in-flight request writes to, or ""
func (s *ChatSession) StreamingTab() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamingTab
}

// Cancel aborts the in-flight request, if any. The partial answer revealed
// so far stays in the transcript.
func (s *ChatSession) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SendMessage runs one request against the given tab. The user message and
// an empty AI placeholder are appended before the network call so the UI
// shows both instantly; the rest happens in a goroutine, reported through
// the notify callback. Returns ErrSessionBusy while a request is in flight.
func (s *ChatSession) SendMessage(tabID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	tab, ok := s.tabs.Tab(tabID)
	if !ok {
		return fmt.Errorf("unknown tab: %s", tabID)
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	s.busy = true
	s.state = StateComposing
	s.streamingTab = tabID
	ctx, cancel := context.WithTimeout(context.Background(), s.streamTimeout)
	s.cancel = cancel
	s.mu.Unlock()

	reqBody := s.composeRequest(tab, text)

	// Show the user message and the empty answer bubble immediately.
	s.store.Append(tabID, Message{Role: roleUser, Content: text})
	s.store.Append(tabID, Message{Role: roleAI, Content: ""})

	go s.run(ctx, cancel, tabID, reqBody)
	return nil
}

// composeRequest builds the stream request from the transcript as it stood
// before the new user message and from the tab's assignment snapshot.
func (s *ChatSession) composeRequest(tab ConversationTab, text string) StreamRequest {
	req := StreamRequest{Question: text}

	if len(tab.Messages) >= 2 {
		lines := make([]string, 0, len(tab.Messages))
		for _, msg := range tab.Messages {
			lines = append(lines, msg.Role+": "+msg.Content)
		}
		pre := strings.Join(lines, "\n")
		req.PreContent = &pre
	}

	if tab.Assignment.ID != 0 {
		block := tab.Assignment.contextBlock()
		req.AssignmentContent = &block
	}

	return req
}

// run drives one request to a terminal state
func (s *ChatSession) run(ctx context.Context, cancel context.CancelFunc, tabID string, reqBody StreamRequest) {
	defer cancel()

	s.setState(StateStreaming)
	s.send(streamStartedMsg{tabID: tabID})

	body, err := s.api.StreamAnswer(ctx, reqBody)
	if err != nil {
		s.fail(ctx, tabID, err)
		return
	}
	defer body.Close()

	emitter := NewTokenEmitter(s.revealDelay, func(char string) {
		s.store.MutateLastIfRole(tabID, roleAI, func(m Message) Message {
			m.Content += char
			return m
		})
		s.send(streamProgressMsg{tabID: tabID})
	})

	decoder := NewStreamDecoder()
	buf := make([]byte, 4096)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if done := s.process(ctx, tabID, emitter, decoder.Feed(buf[:n])); done {
				return
			}
		}
		if readErr == io.EOF {
			// Upstream completed without the sentinel; flush the tail
			// and treat it as a normal end of stream.
			if done := s.process(ctx, tabID, emitter, decoder.Finish()); done {
				return
			}
			s.finish(tabID, StateCompleted, nil)
			return
		}
		if readErr != nil {
			s.fail(ctx, tabID, readErr)
			return
		}
		if ctx.Err() != nil {
			s.finish(tabID, StateCancelled, ctx.Err())
			return
		}
	}
}

// process replays decoded events. A token is fully revealed before the
// next event is looked at; that reveal is the only back-pressure on the
// reader. Returns true when the session reached a terminal state.
func (s *ChatSession) process(ctx context.Context, tabID string, emitter *TokenEmitter, events []StreamEvent) bool {
	for _, ev := range events {
		switch ev.Kind {
		case StreamToken:
			if err := emitter.Reveal(ctx, ev.Text); err != nil {
				s.finish(tabID, StateCancelled, err)
				return true
			}
		case StreamEnd:
			s.finish(tabID, StateCompleted, nil)
			return true
		case StreamMalformed:
			s.logger.Warn("skipping malformed answer line", "payload", ev.Raw)
		}
	}
	return false
}

// fail handles a transport failure: the half-written answer is replaced by
// the fixed apology text. Cancellation that surfaces as a request error is
// still reported as cancellation.
func (s *ChatSession) fail(ctx context.Context, tabID string, err error) {
	if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.finish(tabID, StateCancelled, ctx.Err())
		return
	}

	s.logger.Error("answer stream failed", "tab_id", tabID, "error", err)
	s.store.MutateLastIfRole(tabID, roleAI, func(m Message) Message {
		m.Content = streamErrorFallback
		return m
	})
	s.finish(tabID, StateErrored, err)
}

func (s *ChatSession) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *ChatSession) finish(tabID string, state SessionState, err error) {
	s.mu.Lock()
	s.state = state
	s.busy = false
	s.cancel = nil
	s.streamingTab = ""
	s.mu.Unlock()
	s.send(streamFinishedMsg{tabID: tabID, state: state, err: err})
}

func (s *ChatSession) send(msg any) {
	if s.notify != nil {
		s.notify(msg)
	}
}
