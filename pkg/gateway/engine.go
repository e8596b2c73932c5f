// Package gateway orchestrates one chat-completion request end to end:
// session token resolution, the single backend chat call, and relaying
// the result through the transport writer as either a live frame stream
// or one aggregated response.
package gateway

import (
	"context"
	"fmt"

	"github.com/duckgate/duckgate/pkg/api"
	"github.com/duckgate/duckgate/pkg/transport"
)

// Backend is the adapter contract the engine drives. Exactly one
// session token is consumed per Stream or Complete call.
type Backend interface {
	// Token mints a fresh single-use session token.
	Token(ctx context.Context) (string, error)

	// Stream performs the chat call and bridges the backend's event
	// stream into frames. The channel closes when the stream ends.
	Stream(ctx context.Context, req *api.ChatCompletionRequest, token string) (<-chan api.ChatCompletionChunk, error)

	// Complete performs the chat call and aggregates the stream into a
	// single response.
	Complete(ctx context.Context, req *api.ChatCompletionRequest, token string) (*api.ChatCompletionResponse, error)
}

// Engine implements transport.ChatCompleter on top of a Backend.
// It holds no per-request state; everything is scoped to one call.
type Engine struct {
	backend Backend
}

var _ transport.ChatCompleter = (*Engine)(nil)

// New creates an Engine driving the given backend.
func New(backend Backend) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("gateway: backend is required")
	}
	return &Engine{backend: backend}, nil
}

// CreateChatCompletion handles one request: resolve the session token
// (caller-supplied via context, else freshly minted), then either relay
// the frame stream live or buffer it into a single response, per the
// request's stream flag. Token acquisition must succeed before any chat
// call is attempted; a failed chat call is reported, never retried with
// a new token.
func (e *Engine) CreateChatCompletion(ctx context.Context, req *api.ChatCompletionRequest, w transport.ChatWriter) error {
	token := transport.SessionTokenFromContext(ctx)
	if token == "" {
		var err error
		token, err = e.backend.Token(ctx)
		if err != nil {
			return err
		}
	}

	// Echo the token the request consumed.
	w.SetSessionToken(token)

	if !req.Stream {
		resp, err := e.backend.Complete(ctx, req, token)
		if err != nil {
			return err
		}
		return w.WriteCompletion(ctx, resp)
	}

	ch, err := e.backend.Stream(ctx, req, token)
	if err != nil {
		return err
	}

	// Relay frames in arrival order. A write failure means the caller
	// is gone; stop relaying and let context cancellation tear down
	// the backend read.
	for chunk := range ch {
		if werr := w.WriteChunk(ctx, chunk); werr != nil {
			return fmt.Errorf("relaying frame: %w", werr)
		}
	}

	return nil
}
