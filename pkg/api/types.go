package api

// Message roles. The gateway accepts any role string from callers; only
// "system" receives special treatment when translated for the backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Object kind tags used in responses.
const (
	ObjectChatCompletion      = "chat.completion"
	ObjectChatCompletionChunk = "chat.completion.chunk"
	ObjectModel               = "model"
	ObjectList                = "list"
)

// FinishReasonStop is the only finish reason the backend can produce.
const FinishReasonStop = "stop"

// ChatMessage is a single role/content pair in conversation order.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the inbound request body for
// POST /v1/chat/completions. Model is a free-form identifier and is not
// validated against the catalog.
type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

// ChunkDelta carries the incremental part of a streamed message. Both
// fields are optional; an empty delta on a terminal chunk signals the
// end of the message.
type ChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChunkChoice is the single element of a chunk's choice list.
// ContentFilterResults is always serialized as null; the backend
// performs no content filtering.
type ChunkChoice struct {
	Index                int        `json:"index"`
	Delta                ChunkDelta `json:"delta"`
	FinishReason         *string    `json:"finish_reason"`
	ContentFilterResults any        `json:"content_filter_results"`
}

// ChatCompletionChunk is one frame of the streaming response.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// Terminal reports whether the chunk carries a finish reason, ending
// the stream.
func (c *ChatCompletionChunk) Terminal() bool {
	return len(c.Choices) > 0 && c.Choices[0].FinishReason != nil
}

// Usage reports token counts. The backend exposes none, so all counters
// are reported as zero.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionChoice holds the fully assembled message of a non-streaming
// response.
type CompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionResponse is the single JSON body returned when the
// caller does not request streaming.
type ChatCompletionResponse struct {
	ID                string             `json:"id"`
	Object            string             `json:"object"`
	Created           int64              `json:"created"`
	Model             string             `json:"model"`
	SystemFingerprint string             `json:"system_fingerprint"`
	Choices           []CompletionChoice `json:"choices"`
	Usage             Usage              `json:"usage"`
}

// Model is one entry of the static catalog returned by GET /v1/models.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList wraps the catalog for JSON serialization.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}
