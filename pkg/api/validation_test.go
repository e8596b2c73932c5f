package api

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateChatRequest(t *testing.T) {
	valid := ChatCompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []ChatMessage{
			{Role: RoleUser, Content: "Hi"},
		},
	}

	tests := []struct {
		name    string
		mutate  func(*ChatCompletionRequest)
		wantErr string // substring of the first violation, "" for valid
	}{
		{"valid", func(r *ChatCompletionRequest) {}, ""},
		{"missing model", func(r *ChatCompletionRequest) { r.Model = "" }, "model is required"},
		{"no messages", func(r *ChatCompletionRequest) { r.Messages = nil }, "at least one message"},
		{"empty role", func(r *ChatCompletionRequest) { r.Messages[0].Role = "" }, "messages[0].role"},
		{"empty content", func(r *ChatCompletionRequest) { r.Messages[0].Content = "" }, "messages[0].content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Messages = append([]ChatMessage(nil), valid.Messages...)
			tt.mutate(&req)

			err := ValidateChatRequest(&req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Message, tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Message, tt.wantErr)
			}
		})
	}
}

func TestValidateChatRequestReportsFirstViolation(t *testing.T) {
	req := ChatCompletionRequest{
		Messages: []ChatMessage{{Role: "", Content: ""}},
	}

	err := ValidateChatRequest(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Message != "model is required" {
		t.Errorf("first violation = %q, want model check first", err.Message)
	}
}

func TestValidateChatRequestModelIsFreeForm(t *testing.T) {
	req := ChatCompletionRequest{
		Model:    "some/unknown-model-42",
		Messages: []ChatMessage{{Role: RoleUser, Content: "Hi"}},
	}
	if err := ValidateChatRequest(&req); err != nil {
		t.Errorf("unknown model was rejected: %v", err)
	}
}

func TestChunkSerializesNullFields(t *testing.T) {
	chunk := ChatCompletionChunk{
		ID:      "chatcmpl-abcDEF123456789012345678",
		Object:  ObjectChatCompletionChunk,
		Created: 1700000000,
		Model:   "gpt-4o-mini",
		Choices: []ChunkChoice{{Index: 0, Delta: ChunkDelta{Content: "Hi"}}},
	}

	data, err := json.Marshal(chunk)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// finish_reason and content_filter_results must be explicit nulls
	// on non-terminal frames, not omitted.
	for _, field := range []string{`"finish_reason":null`, `"content_filter_results":null`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("chunk JSON missing %s: %s", field, data)
		}
	}
}
