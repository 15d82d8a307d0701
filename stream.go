package main

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const (
	streamDataPrefix   = "data: "
	streamDoneSentinel = "[DONE]"
)

// StreamEventKind identifies the type of a decoded stream event.
type StreamEventKind int

const (
	// StreamToken carries a fragment of generated answer text.
	StreamToken StreamEventKind = iota
	// StreamEnd marks the terminal [DONE] sentinel. No events follow it.
	StreamEnd
	// StreamMalformed marks a data line that could not be parsed. The
	// stream continues; callers are expected to log and move on.
	StreamMalformed
)

// StreamEvent is one decoded protocol event from the answer stream.
type StreamEvent struct {
	Kind StreamEventKind
	Text string // token text for StreamToken
	Raw  string // offending payload for StreamMalformed
}

// answerChunk mirrors the JSON payload carried on each data line. Content is
// a pointer so an absent field can be told apart from an empty string.
type answerChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamDecoder converts the byte chunks of an /answer/stream response body
// into StreamEvents. The wire format is SSE-like: each meaningful line is
// "data: " followed by a JSON payload, terminated by the "[DONE]" sentinel.
// Chunk boundaries are arbitrary; the decoder buffers the trailing partial
// line between Feed calls. After the sentinel the decoder is terminated and
// further input is ignored.
type StreamDecoder struct {
	buf        strings.Builder
	terminated bool
}

// NewStreamDecoder returns a decoder ready to accept the first chunk.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

// Feed appends one chunk and returns all events completed by it.
func (d *StreamDecoder) Feed(chunk []byte) []StreamEvent {
	if d.terminated || len(chunk) == 0 {
		return nil
	}

	d.buf.Write(chunk)
	text := d.buf.String()

	idx := strings.LastIndexByte(text, '\n')
	if idx < 0 {
		// No complete line yet, keep buffering.
		return nil
	}

	complete := text[:idx]
	d.buf.Reset()
	d.buf.WriteString(text[idx+1:])

	var events []StreamEvent
	for _, line := range strings.Split(complete, "\n") {
		ev, ok := d.decodeLine(line)
		if !ok {
			continue
		}
		events = append(events, ev)
		if ev.Kind == StreamEnd {
			d.terminated = true
			break
		}
	}
	return events
}

// Finish flushes any buffered partial line after the transport signalled
// completion. A stream that ends without the sentinel terminates silently,
// so Finish may return no events at all.
func (d *StreamDecoder) Finish() []StreamEvent {
	if d.terminated {
		return nil
	}
	d.terminated = true

	line := d.buf.String()
	d.buf.Reset()
	if line == "" {
		return nil
	}
	if ev, ok := d.decodeLine(line); ok {
		return []StreamEvent{ev}
	}
	return nil
}

// Terminated reports whether the decoder saw the sentinel or was finished.
func (d *StreamDecoder) Terminated() bool {
	return d.terminated
}

// decodeLine decodes one complete line. Lines without the data prefix are
// protocol noise (comments, keep-alives) and yield no event.
func (d *StreamDecoder) decodeLine(line string) (StreamEvent, bool) {
	if !strings.HasPrefix(line, streamDataPrefix) {
		return StreamEvent{}, false
	}

	payload := strings.TrimSpace(line[len(streamDataPrefix):])
	if payload == streamDoneSentinel {
		return StreamEvent{Kind: StreamEnd}, true
	}

	var chunk answerChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		slog.Debug("skipping malformed stream line", "error", err, "payload", payload)
		return StreamEvent{Kind: StreamMalformed, Raw: payload}, true
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == nil {
		return StreamEvent{Kind: StreamMalformed, Raw: payload}, true
	}
	if *chunk.Choices[0].Delta.Content == "" {
		// Present but empty: nothing to reveal, nothing to complain about.
		return StreamEvent{}, false
	}

	return StreamEvent{Kind: StreamToken, Text: *chunk.Choices[0].Delta.Content}, true
}
