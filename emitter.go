package main

import (
	"context"
	"time"
)

const defaultRevealDelay = 10 * time.Millisecond

// AppendCharFunc appends one character to the in-progress AI message of the
// tab a reveal is running against. It is invoked exactly once per character,
// in order, and is expected to persist the tab as a side effect.
type AppendCharFunc func(char string)

// TokenEmitter paces the reveal of decoded tokens into the transcript,
// one character at a time with a fixed delay, to simulate typing. Reveals
// are strictly sequential: the caller must not start a second Reveal before
// the first returns.
type TokenEmitter struct {
	delay  time.Duration
	append AppendCharFunc
}

// NewTokenEmitter creates an emitter. A non-positive delay falls back to the
// default of 10ms per character.
func NewTokenEmitter(delay time.Duration, append AppendCharFunc) *TokenEmitter {
	if delay <= 0 {
		delay = defaultRevealDelay
	}
	return &TokenEmitter{delay: delay, append: append}
}

// Reveal appends the token's characters one by one, waiting the configured
// delay before each. An empty token is a no-op. When ctx is cancelled the
// reveal stops between characters and no further appends happen; the
// context error is returned so the session can wind down.
func (e *TokenEmitter) Reveal(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	timer := time.NewTimer(e.delay)
	defer timer.Stop()

	for i, r := range token {
		if i > 0 {
			timer.Reset(e.delay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		e.append(string(r))
	}
	return nil
}
