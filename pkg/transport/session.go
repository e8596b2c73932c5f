package transport

import "context"

// SessionTokenHeader carries the backend session token: inbound it lets
// a caller supply their own token (bypassing the token probe), outbound
// it echoes the token the request consumed.
const SessionTokenHeader = "x-vqd-4"

// sessionTokenKeyType is the context key type for caller-supplied tokens.
type sessionTokenKeyType struct{}

var sessionTokenKey = sessionTokenKeyType{}

// SessionTokenFromContext extracts the caller-supplied session token.
// Returns an empty string if the caller did not provide one.
func SessionTokenFromContext(ctx context.Context) string {
	if tok, ok := ctx.Value(sessionTokenKey).(string); ok {
		return tok
	}
	return ""
}

// ContextWithSessionToken returns a new context carrying a
// caller-supplied session token.
func ContextWithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey, token)
}
