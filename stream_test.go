package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataLine(token string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n", token)
}

func collectTokens(events []StreamEvent) []string {
	var tokens []string
	for _, ev := range events {
		if ev.Kind == StreamToken {
			tokens = append(tokens, ev.Text)
		}
	}
	return tokens
}

func TestStreamDecoderSingleChunk(t *testing.T) {
	d := NewStreamDecoder()

	events := d.Feed([]byte(dataLine("안녕") + dataLine("하세요") + "data: [DONE]\n"))

	assert.Equal(t, []string{"안녕", "하세요"}, collectTokens(events))
	require.NotEmpty(t, events)
	assert.Equal(t, StreamEnd, events[len(events)-1].Kind)
	assert.True(t, d.Terminated())
}

// Splitting the same byte stream at every possible position, including in
// the middle of a multi-byte rune, must yield the same token sequence.
func TestStreamDecoderChunkBoundaryInvariance(t *testing.T) {
	wire := dataLine("과제") + dataLine(" 설명을") + dataLine(" 알려드릴게요") + "data: [DONE]\n"

	want := []string{"과제", " 설명을", " 알려드릴게요"}

	for split := 1; split < len(wire); split++ {
		d := NewStreamDecoder()
		events := d.Feed([]byte(wire[:split]))
		events = append(events, d.Feed([]byte(wire[split:]))...)
		events = append(events, d.Finish()...)

		assert.Equal(t, want, collectTokens(events), "split at byte %d", split)
	}
}

func TestStreamDecoderByteAtATime(t *testing.T) {
	wire := dataLine("a") + dataLine("b") + dataLine("c") + "data: [DONE]\n"

	d := NewStreamDecoder()
	var events []StreamEvent
	for i := 0; i < len(wire); i++ {
		events = append(events, d.Feed([]byte{wire[i]})...)
	}

	assert.Equal(t, []string{"a", "b", "c"}, collectTokens(events))
	assert.True(t, d.Terminated())
}

func TestStreamDecoderIgnoresInputAfterSentinel(t *testing.T) {
	d := NewStreamDecoder()

	events := d.Feed([]byte("data: [DONE]\n" + dataLine("ghost")))
	require.Len(t, events, 1)
	assert.Equal(t, StreamEnd, events[0].Kind)

	assert.Empty(t, d.Feed([]byte(dataLine("more"))))
	assert.Empty(t, d.Finish())
}

func TestStreamDecoderMalformedLinesDoNotAbort(t *testing.T) {
	wire := dataLine("before") +
		"data: {not json at all\n" +
		"data: {\"choices\":[]}\n" +
		"data: {\"choices\":[{\"delta\":{}}]}\n" +
		dataLine("after") +
		"data: [DONE]\n"

	d := NewStreamDecoder()
	events := d.Feed([]byte(wire))

	assert.Equal(t, []string{"before", "after"}, collectTokens(events))

	var malformed int
	for _, ev := range events {
		if ev.Kind == StreamMalformed {
			malformed++
			assert.NotEmpty(t, ev.Raw)
		}
	}
	assert.Equal(t, 3, malformed)
	assert.True(t, d.Terminated())
}

func TestStreamDecoderEmptyContentYieldsNoEvent(t *testing.T) {
	d := NewStreamDecoder()

	events := d.Feed([]byte(dataLine("") + dataLine("x") + "data: [DONE]\n"))

	assert.Equal(t, []string{"x"}, collectTokens(events))
}

func TestStreamDecoderSkipsNonDataLines(t *testing.T) {
	wire := ": keep-alive\n" +
		"\n" +
		"event: message\n" +
		dataLine("ok") +
		"data: [DONE]\n"

	d := NewStreamDecoder()
	events := d.Feed([]byte(wire))

	assert.Equal(t, []string{"ok"}, collectTokens(events))
	assert.True(t, d.Terminated())
}

func TestStreamDecoderFinishFlushesPartialLine(t *testing.T) {
	d := NewStreamDecoder()

	// Transport closed without a trailing newline and without the sentinel.
	events := d.Feed([]byte(dataLine("first") + strings.TrimSuffix(dataLine("tail"), "\n")))
	assert.Equal(t, []string{"first"}, collectTokens(events))
	assert.False(t, d.Terminated())

	tail := d.Finish()
	assert.Equal(t, []string{"tail"}, collectTokens(tail))
	assert.True(t, d.Terminated())
}

func TestStreamDecoderFinishOnEmptyBuffer(t *testing.T) {
	d := NewStreamDecoder()
	assert.Empty(t, d.Finish())
	assert.True(t, d.Terminated())
}
