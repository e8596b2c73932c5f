package duckai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/duckgate/duckgate/pkg/api"
)

// Complete performs the backend chat call and aggregates the whole
// event stream into a single response. Used when the caller does not
// request streaming.
func (c *Client) Complete(ctx context.Context, req *api.ChatCompletionRequest, token string) (*api.ChatCompletionResponse, error) {
	body, err := c.chat(ctx, req, token)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, api.NewInternalError("reading backend response: " + err.Error())
	}

	meta := newFrameMeta(req.Model)
	content := aggregateText(string(data))

	return &api.ChatCompletionResponse{
		ID:                meta.id,
		Object:            api.ObjectChatCompletion,
		Created:           meta.created,
		Model:             meta.model,
		SystemFingerprint: "fp_" + strings.TrimPrefix(meta.id, "chatcmpl-")[:10],
		Choices: []api.CompletionChoice{{
			Index: 0,
			Message: api.ChatMessage{
				Role:    api.RoleAssistant,
				Content: content,
			},
			FinishReason: api.FinishReasonStop,
		}},
		Usage: api.Usage{},
	}, nil
}

// aggregateText concatenates, in order, every text delta in the
// buffered backend response up to (not including) the sentinel.
//
// Frames are delimited by blank lines here, one per paragraph, while
// the streaming bridge splits on single newlines. Whether the backend's
// framing makes the two equivalent is unverified, so both rules are
// kept as-is rather than unified. Prefix stripping, the sentinel, and
// skip-on-parse-failure behave exactly as in the streaming path;
// anything after the sentinel is ignored.
func aggregateText(raw string) string {
	var b strings.Builder

	for _, frame := range strings.Split(raw, "\n\n") {
		payload, ok := strings.CutPrefix(strings.TrimSpace(frame), linePrefix)
		if !ok {
			continue
		}

		if payload == sentinel {
			break
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			slog.Warn("skipping malformed response frame",
				"error", err.Error(),
				"data", truncate(payload, 200),
			)
			continue
		}

		b.WriteString(ev.Message)
	}

	return b.String()
}
