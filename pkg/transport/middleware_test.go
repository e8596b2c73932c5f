package transport

import (
	"context"
	"testing"

	"github.com/duckgate/duckgate/pkg/api"
)

// nopWriter is a ChatWriter that discards everything.
type nopWriter struct {
	token string
}

func (n *nopWriter) SetSessionToken(token string) { n.token = token }
func (n *nopWriter) WriteChunk(ctx context.Context, chunk api.ChatCompletionChunk) error {
	return nil
}
func (n *nopWriter) WriteCompletion(ctx context.Context, resp *api.ChatCompletionResponse) error {
	return nil
}
func (n *nopWriter) Flush() error { return nil }

func testRequest() *api.ChatCompletionRequest {
	return &api.ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []api.ChatMessage{{Role: "user", Content: "Hi"}},
	}
}

func TestChainOrder(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next ChatCompleter) ChatCompleter {
			return ChatCompleterFunc(func(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error {
				order = append(order, name)
				return next.CreateChatCompletion(ctx, req, w)
			})
		}
	}

	handler := ChatCompleterFunc(func(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error {
		order = append(order, "handler")
		return nil
	})

	chained := Chain(mw("a"), mw("b"), mw("c"))(handler)
	if err := chained.CreateChatCompletion(context.Background(), testRequest(), &nopWriter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a", "b", "c", "handler"}
	if len(order) != len(want) {
		t.Fatalf("call order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("call order = %v, want %v", order, want)
			break
		}
	}
}

func TestRequestIDGeneratesWhenAbsent(t *testing.T) {
	var seen string
	handler := ChatCompleterFunc(func(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error {
		seen = RequestIDFromContext(ctx)
		return nil
	})

	RequestID()(handler).CreateChatCompletion(context.Background(), testRequest(), &nopWriter{})

	if seen == "" {
		t.Error("expected a generated request ID")
	}
	if len(seen) != 32 {
		t.Errorf("request ID %q is not 16 hex bytes", seen)
	}
}

func TestRequestIDKeepsExisting(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "fixed-id")

	var seen string
	handler := ChatCompleterFunc(func(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error {
		seen = RequestIDFromContext(ctx)
		return nil
	})

	RequestID()(handler).CreateChatCompletion(ctx, testRequest(), &nopWriter{})

	if seen != "fixed-id" {
		t.Errorf("request ID = %q, want fixed-id", seen)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	handler := ChatCompleterFunc(func(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error {
		panic("boom")
	})

	err := Recovery()(handler).CreateChatCompletion(context.Background(), testRequest(), &nopWriter{})
	if err == nil {
		t.Fatal("expected recovered error")
	}

	var gerr *api.Error
	if !asError(err, &gerr) || gerr.Kind != api.ErrKindInternal {
		t.Errorf("recovered error = %v, want internal kind", err)
	}
}

func TestRecoveryPassesThrough(t *testing.T) {
	handler := ChatCompleterFunc(func(ctx context.Context, req *api.ChatCompletionRequest, w ChatWriter) error {
		return nil
	})

	if err := Recovery()(handler).CreateChatCompletion(context.Background(), testRequest(), &nopWriter{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func asError(err error, target **api.Error) bool {
	e, ok := err.(*api.Error)
	if ok {
		*target = e
	}
	return ok
}
