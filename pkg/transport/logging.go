package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/duckgate/duckgate/pkg/api"
)

// Logging returns middleware that emits structured log entries for each
// chat-completion request. The log entry includes request ID (from
// context), model, streaming flag, duration, and whether the request
// succeeded or failed. HTTP-level details (status codes, paths) are
// logged by the adapter's middleware instead.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatCompleter) ChatCompleter {
		return ChatCompleterFunc(func(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error {
			start := time.Now()
			requestID := RequestIDFromContext(ctx)

			err := next.CreateChatCompletion(ctx, req, w)

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("model", req.Model),
				slog.Bool("stream", req.Stream),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
			}

			return err
		})
	}
}
