package transport

import (
	"context"
	"fmt"

	"github.com/duckgate/duckgate/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to generic gateway errors. The server continues to
// accept new requests after a panic is recovered.
func Recovery() Middleware {
	return func(next ChatCompleter) ChatCompleter {
		return ChatCompleterFunc(func(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) (retErr error) {
			defer func() {
				if r := recover(); r != nil {
					retErr = api.NewInternalError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.CreateChatCompletion(ctx, req, w)
		})
	}
}
