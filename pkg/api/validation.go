package api

import "fmt"

// ValidateChatRequest checks an inbound request for structural validity.
// It returns an *Error describing the first violation, or nil if the
// request is valid. The model identifier is free-form and deliberately
// not checked against the catalog.
func ValidateChatRequest(req *ChatCompletionRequest) *Error {
	if req.Model == "" {
		return NewValidationError("model is required")
	}

	if len(req.Messages) == 0 {
		return NewValidationError("messages must contain at least one message")
	}

	for i, m := range req.Messages {
		if m.Role == "" {
			return NewValidationError(fmt.Sprintf("messages[%d].role is required", i))
		}
		if m.Content == "" {
			return NewValidationError(fmt.Sprintf("messages[%d].content is required", i))
		}
	}

	return nil
}
