package transport

import (
	"context"

	"github.com/duckgate/duckgate/pkg/api"
)

// ChatCompleter handles the create-chat-completion operation. The
// implementation receives a validated request and writes the result
// (streamed frames or a complete response) to the ChatWriter.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error
}

// ChatCompleterFunc is an adapter that allows using an ordinary
// function as a ChatCompleter.
type ChatCompleterFunc func(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error

// CreateChatCompletion calls f(ctx, req, w).
func (f ChatCompleterFunc) CreateChatCompletion(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error {
	return f(ctx, req, w)
}

// ChatWriter abstracts streaming and non-streaming output for the
// handler. The transport layer creates a ChatWriter per request.
//
// WriteChunk and WriteCompletion are mutually exclusive on a single
// writer. Calling WriteChunk after a terminal frame (finish_reason set)
// returns an error; the literal end-of-stream marker is the writer's
// responsibility and follows the terminal frame exactly once.
type ChatWriter interface {
	// SetSessionToken records the backend session token consumed by
	// this request so it can be echoed in the x-vqd-4 response header.
	// Must be called before the first write to take effect.
	SetSessionToken(token string)

	// WriteChunk sends a single streaming frame.
	WriteChunk(ctx context.Context, chunk api.ChatCompletionChunk) error

	// WriteCompletion sends a complete non-streaming response.
	WriteCompletion(ctx context.Context, resp *api.ChatCompletionResponse) error

	// Flush ensures buffered data is sent to the client. Returns an
	// error if the client has disconnected.
	Flush() error
}
