package duckai

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/duckgate/duckgate/pkg/api"
)

// frameMeta carries the per-request constants stamped on every emitted
// frame. One completion ID and creation timestamp are shared by all
// frames of a stream.
type frameMeta struct {
	id      string
	created int64
	model   string
}

func newFrameMeta(model string) frameMeta {
	return frameMeta{
		id:      api.NewCompletionID(),
		created: time.Now().Unix(),
		model:   model,
	}
}

// Stream performs the backend chat call and bridges its event stream
// into chat.completion.chunk frames. The returned channel is closed
// when the sentinel is seen, the stream ends, a read error occurs, or
// the context is cancelled; the backend body is released on every one
// of those paths.
func (c *Client) Stream(ctx context.Context, req *api.ChatCompletionRequest, token string) (<-chan api.ChatCompletionChunk, error) {
	body, err := c.chat(ctx, req, token)
	if err != nil {
		return nil, err
	}

	ch := make(chan api.ChatCompletionChunk, 16)
	meta := newFrameMeta(req.Model)

	go func() {
		defer close(ch)
		defer body.Close()
		bridgeStream(ctx, body, meta, ch)
	}()

	return ch, nil
}

// bridgeStream reads the backend's line-delimited stream from body,
// reassembling lines across arbitrary network chunk boundaries, and
// sends one frame per parsed event on ch. The channel is NOT closed by
// this function; the caller is responsible for closing it.
//
// Expected input, one event per line:
//
//	data: {"role":"assistant","message":"Hel"}
//	data: {"message":"lo"}
//	data: [DONE]
//
// The sentinel produces a single terminal frame with finish_reason
// "stop" and an empty delta, after which no further input is consumed.
// Malformed lines are logged and skipped. A read error ends the
// sequence without a terminal frame; callers observe a short stream.
// Graceful end-of-input without a sentinel likewise ends the sequence
// without the terminal frame.
func bridgeStream(ctx context.Context, body io.Reader, meta frameMeta, ch chan<- api.ChatCompletionChunk) {
	scanner := bufio.NewScanner(body)
	// The default 64 KiB line cap is too small for a large delta event;
	// hitting it would surface as ErrTooLong and truncate the stream.
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		// Check for context cancellation between lines.
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()

		// Lines without the data marker (blank separators, comments)
		// carry no event.
		if !strings.HasPrefix(line, linePrefix) {
			continue
		}

		payload := strings.TrimPrefix(line, linePrefix)

		if payload == sentinel {
			emit(ctx, ch, terminalChunk(meta))
			return
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			slog.Warn("skipping malformed stream line",
				"error", err.Error(),
				"data", truncate(payload, 200),
			)
			continue
		}

		if !emit(ctx, ch, deltaChunk(meta, ev)) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		// Context cancellation is not an error from our perspective.
		if ctx.Err() != nil {
			return
		}
		// A transport failure truncates the stream; frames already
		// emitted stand, and no terminal frame is synthesized.
		slog.Error("backend stream read error", "error", err.Error())
	}
}

// emit sends a frame unless the context is cancelled, so a consumer
// that stopped reading never wedges the producer goroutine.
func emit(ctx context.Context, ch chan<- api.ChatCompletionChunk, chunk api.ChatCompletionChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// deltaChunk builds a frame carrying the optional role and text delta
// of one backend event.
func deltaChunk(meta frameMeta, ev streamEvent) api.ChatCompletionChunk {
	return api.ChatCompletionChunk{
		ID:      meta.id,
		Object:  api.ObjectChatCompletionChunk,
		Created: meta.created,
		Model:   meta.model,
		Choices: []api.ChunkChoice{{
			Index: 0,
			Delta: api.ChunkDelta{Role: ev.Role, Content: ev.Message},
		}},
	}
}

// terminalChunk builds the final stop frame: empty delta, finish_reason
// "stop".
func terminalChunk(meta frameMeta) api.ChatCompletionChunk {
	stop := api.FinishReasonStop
	return api.ChatCompletionChunk{
		ID:      meta.id,
		Object:  api.ObjectChatCompletionChunk,
		Created: meta.created,
		Model:   meta.model,
		Choices: []api.ChunkChoice{{
			Index:        0,
			Delta:        api.ChunkDelta{},
			FinishReason: &stop,
		}},
	}
}

// truncate limits a string to maxLen characters for log output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
