package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/duckgate/duckgate/pkg/api"
	"github.com/duckgate/duckgate/pkg/transport"
)

// writerState tracks the state of a chat writer.
type writerState int

const (
	writerIdle      writerState = iota // Initial state, no writes yet
	writerStreaming                    // WriteChunk has been called at least once
	writerCompleted                    // Terminal frame or WriteCompletion sent
)

// chatWriter implements transport.ChatWriter for HTTP responses. It
// handles both streaming (SSE) and non-streaming (JSON) output.
type chatWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController

	mu    sync.Mutex
	state writerState

	// sessionToken, when set before the first write, is echoed in the
	// x-vqd-4 response header.
	sessionToken string
}

var _ transport.ChatWriter = (*chatWriter)(nil)

// newChatWriter creates a ChatWriter wrapping an http.ResponseWriter.
func newChatWriter(w http.ResponseWriter) *chatWriter {
	return &chatWriter{
		w:  w,
		rc: http.NewResponseController(w),
	}
}

// SetSessionToken records the token to echo. Calls after the first
// write are ignored; headers are already on the wire.
func (s *chatWriter) SetSessionToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == writerIdle {
		s.sessionToken = token
	}
}

// WriteChunk sends a single SSE frame:
//
//	data: {json}\n
//	\n
//
// After a terminal frame (finish_reason set) it also sends the literal
// end-of-stream marker exactly once:
//
//	data: [DONE]\n
//	\n
//
// and refuses any further writes.
func (s *chatWriter) WriteChunk(ctx context.Context, chunk api.ChatCompletionChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == writerCompleted {
		return errors.New("cannot write chunk: writer is completed")
	}

	// First frame: set SSE headers.
	if s.state == writerIdle {
		s.w.Header().Set("Content-Type", "text/event-stream")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.Header().Set("Connection", "keep-alive")
		if s.sessionToken != "" {
			s.w.Header().Set(transport.SessionTokenHeader, s.sessionToken)
		}
		s.state = writerStreaming
	}

	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write chunk: %w", err)
	}

	// Flush immediately so frames reach the client as they arrive.
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	if chunk.Terminal() {
		if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
			return fmt.Errorf("failed to write [DONE]: %w", err)
		}
		if err := s.rc.Flush(); err != nil {
			return fmt.Errorf("failed to flush [DONE]: %w", err)
		}
		s.state = writerCompleted
	}

	return nil
}

// WriteCompletion sends a complete non-streaming JSON response.
// This is mutually exclusive with WriteChunk.
func (s *chatWriter) WriteCompletion(ctx context.Context, resp *api.ChatCompletionResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == writerStreaming {
		return errors.New("cannot write completion: streaming has already started")
	}
	if s.state == writerCompleted {
		return errors.New("cannot write completion: writer is completed")
	}

	s.w.Header().Set("Content-Type", "application/json")
	if s.sessionToken != "" {
		s.w.Header().Set(transport.SessionTokenHeader, s.sessionToken)
	}
	s.state = writerCompleted

	if err := json.NewEncoder(s.w).Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	return nil
}

// Flush ensures buffered data is sent to the client.
func (s *chatWriter) Flush() error {
	return s.rc.Flush()
}

// hasStartedStreaming returns true if at least one SSE frame has been written.
func (s *chatWriter) hasStartedStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != writerIdle && s.w.Header().Get("Content-Type") == "text/event-stream"
}
