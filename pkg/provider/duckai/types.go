package duckai

// TokenHeader is the header carrying the ephemeral session token, on
// both the status probe response and the chat request.
const TokenHeader = "x-vqd-4"

// tokenAcceptHeader must be sent on the status probe for the backend
// to mint a token.
const tokenAcceptHeader = "x-vqd-accept"

// Stream framing constants.
const (
	linePrefix = "data: "
	sentinel   = "[DONE]"
)

// chatPayload is the backend's chat request body.
type chatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage is one backend message. The backend has no system-role
// concept; translation remaps "system" to "user".
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamEvent is the JSON payload of one backend stream line. Message
// carries the text delta; Role is present on the first event of a
// message. Unknown fields are ignored.
type streamEvent struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}
