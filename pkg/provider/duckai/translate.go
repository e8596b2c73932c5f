package duckai

import "github.com/duckgate/duckgate/pkg/api"

// translateRequest converts an inbound chat request into the backend's
// request body. The model identifier and all message content are copied
// verbatim and message order is preserved; the only remapping is
// "system" -> "user" because the backend accepts no system role.
func translateRequest(req *api.ChatCompletionRequest) chatPayload {
	p := chatPayload{
		Model:    req.Model,
		Messages: make([]chatMessage, 0, len(req.Messages)),
	}

	for _, m := range req.Messages {
		role := m.Role
		if role == api.RoleSystem {
			role = api.RoleUser
		}
		p.Messages = append(p.Messages, chatMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	return p
}
