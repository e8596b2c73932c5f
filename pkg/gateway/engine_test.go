package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/duckgate/duckgate/pkg/api"
	"github.com/duckgate/duckgate/pkg/transport"
)

// stubBackend records calls and plays back canned results.
type stubBackend struct {
	token    string
	tokenErr error

	tokenCalls int
	chatToken  string

	frames      []api.ChatCompletionChunk
	streamErr   error
	response    *api.ChatCompletionResponse
	completeErr error
}

func (s *stubBackend) Token(ctx context.Context) (string, error) {
	s.tokenCalls++
	return s.token, s.tokenErr
}

func (s *stubBackend) Stream(ctx context.Context, req *api.ChatCompletionRequest, token string) (<-chan api.ChatCompletionChunk, error) {
	s.chatToken = token
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	ch := make(chan api.ChatCompletionChunk, len(s.frames))
	for _, f := range s.frames {
		ch <- f
	}
	close(ch)
	return ch, nil
}

func (s *stubBackend) Complete(ctx context.Context, req *api.ChatCompletionRequest, token string) (*api.ChatCompletionResponse, error) {
	s.chatToken = token
	return s.response, s.completeErr
}

// recordingWriter captures everything written.
type recordingWriter struct {
	token      string
	chunks     []api.ChatCompletionChunk
	completion *api.ChatCompletionResponse
	chunkErr   error
}

func (r *recordingWriter) SetSessionToken(token string) { r.token = token }
func (r *recordingWriter) WriteChunk(ctx context.Context, chunk api.ChatCompletionChunk) error {
	if r.chunkErr != nil {
		return r.chunkErr
	}
	r.chunks = append(r.chunks, chunk)
	return nil
}
func (r *recordingWriter) WriteCompletion(ctx context.Context, resp *api.ChatCompletionResponse) error {
	r.completion = resp
	return nil
}
func (r *recordingWriter) Flush() error { return nil }

func chatRequest(stream bool) *api.ChatCompletionRequest {
	return &api.ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []api.ChatMessage{{Role: "user", Content: "Hi"}},
		Stream:   stream,
	}
}

func TestEngineMintsTokenWhenCallerSuppliesNone(t *testing.T) {
	backend := &stubBackend{token: "4-minted", response: &api.ChatCompletionResponse{}}
	eng, _ := New(backend)
	w := &recordingWriter{}

	if err := eng.CreateChatCompletion(context.Background(), chatRequest(false), w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if backend.tokenCalls != 1 {
		t.Errorf("token calls = %d, want 1", backend.tokenCalls)
	}
	if backend.chatToken != "4-minted" {
		t.Errorf("chat used token %q", backend.chatToken)
	}
	if w.token != "4-minted" {
		t.Errorf("echoed token = %q", w.token)
	}
}

func TestEnginePassesThroughCallerToken(t *testing.T) {
	backend := &stubBackend{token: "4-minted", response: &api.ChatCompletionResponse{}}
	eng, _ := New(backend)
	w := &recordingWriter{}

	ctx := transport.ContextWithSessionToken(context.Background(), "4-caller")
	if err := eng.CreateChatCompletion(ctx, chatRequest(false), w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if backend.tokenCalls != 0 {
		t.Errorf("token probe was called %d times despite caller token", backend.tokenCalls)
	}
	if backend.chatToken != "4-caller" {
		t.Errorf("chat used token %q, want caller's", backend.chatToken)
	}
	if w.token != "4-caller" {
		t.Errorf("echoed token = %q", w.token)
	}
}

func TestEngineFailsBeforeChatWhenTokenUnavailable(t *testing.T) {
	backend := &stubBackend{tokenErr: api.NewTokenError("probe response missing header")}
	eng, _ := New(backend)
	w := &recordingWriter{}

	err := eng.CreateChatCompletion(context.Background(), chatRequest(false), w)
	if err == nil {
		t.Fatal("expected token error")
	}

	var gerr *api.Error
	if !errors.As(err, &gerr) || gerr.Kind != api.ErrKindToken {
		t.Errorf("error = %v, want token kind", err)
	}
	if backend.chatToken != "" {
		t.Error("chat call was attempted without a token")
	}
	if w.completion != nil || len(w.chunks) > 0 {
		t.Error("a response was written despite the failure")
	}
}

func TestEngineStreamingRelaysFramesInOrder(t *testing.T) {
	stop := api.FinishReasonStop
	frames := []api.ChatCompletionChunk{
		{Choices: []api.ChunkChoice{{Delta: api.ChunkDelta{Content: "a"}}}},
		{Choices: []api.ChunkChoice{{Delta: api.ChunkDelta{Content: "b"}}}},
		{Choices: []api.ChunkChoice{{FinishReason: &stop}}},
	}
	backend := &stubBackend{token: "4-t", frames: frames}
	eng, _ := New(backend)
	w := &recordingWriter{}

	if err := eng.CreateChatCompletion(context.Background(), chatRequest(true), w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(w.chunks) != 3 {
		t.Fatalf("relayed %d frames, want 3", len(w.chunks))
	}
	if w.chunks[0].Choices[0].Delta.Content != "a" || w.chunks[1].Choices[0].Delta.Content != "b" {
		t.Error("frame order not preserved")
	}
	if !w.chunks[2].Terminal() {
		t.Error("terminal frame not relayed last")
	}
}

func TestEngineNonStreamingWritesCompletion(t *testing.T) {
	resp := &api.ChatCompletionResponse{ID: "chatcmpl-x"}
	backend := &stubBackend{token: "4-t", response: resp}
	eng, _ := New(backend)
	w := &recordingWriter{}

	if err := eng.CreateChatCompletion(context.Background(), chatRequest(false), w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.completion != resp {
		t.Error("completion was not written")
	}
	if len(w.chunks) != 0 {
		t.Error("frames were written on the non-streaming path")
	}
}

func TestEngineSurfacesBackendError(t *testing.T) {
	backend := &stubBackend{token: "4-t", streamErr: api.NewBackendError("418 blocked")}
	eng, _ := New(backend)
	w := &recordingWriter{}

	err := eng.CreateChatCompletion(context.Background(), chatRequest(true), w)

	var gerr *api.Error
	if !errors.As(err, &gerr) || gerr.Kind != api.ErrKindBackend {
		t.Errorf("error = %v, want backend kind", err)
	}
}

func TestEngineStopsOnWriteFailure(t *testing.T) {
	frames := []api.ChatCompletionChunk{
		{Choices: []api.ChunkChoice{{Delta: api.ChunkDelta{Content: "a"}}}},
	}
	backend := &stubBackend{token: "4-t", frames: frames}
	eng, _ := New(backend)
	w := &recordingWriter{chunkErr: errors.New("client gone")}

	if err := eng.CreateChatCompletion(context.Background(), chatRequest(true), w); err == nil {
		t.Error("expected relay error when the writer fails")
	}
}
