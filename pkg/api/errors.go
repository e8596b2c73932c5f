package api

import "net/http"

// ErrorKind classifies a gateway failure. The kind decides the HTTP
// status; the message is surfaced verbatim in the flat error payload.
type ErrorKind string

const (
	// ErrKindAuth covers missing or invalid API credentials. Checked
	// before any backend contact.
	ErrKindAuth ErrorKind = "auth"

	// ErrKindValidation covers malformed inbound requests. No backend
	// contact is attempted.
	ErrKindValidation ErrorKind = "validation"

	// ErrKindToken covers session token acquisition failures (probe
	// failed or token header absent).
	ErrKindToken ErrorKind = "token"

	// ErrKindBackend covers non-success backend responses; the backend's
	// raw error text is carried in the message.
	ErrKindBackend ErrorKind = "backend"

	// ErrKindInternal covers unexpected failures anywhere in the bridge
	// path.
	ErrKindInternal ErrorKind = "internal"
)

// Error is a classified gateway error. It serializes through
// ErrorResponse as a flat {"error": "<message>"} payload.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// HTTPStatus maps the error kind to the user-visible status code.
// Authorization failures are 401; everything else in the taxonomy is
// reported as 400.
func (e *Error) HTTPStatus() int {
	if e.Kind == ErrKindAuth {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

// ErrorResponse is the JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewAuthError creates an authorization error (401).
func NewAuthError(message string) *Error {
	return &Error{Kind: ErrKindAuth, Message: message}
}

// NewValidationError creates a request validation error (400).
func NewValidationError(message string) *Error {
	return &Error{Kind: ErrKindValidation, Message: message}
}

// NewTokenError creates a session token acquisition error (400).
func NewTokenError(message string) *Error {
	return &Error{Kind: ErrKindToken, Message: message}
}

// NewBackendError creates an error carrying the backend's raw error
// text (400).
func NewBackendError(message string) *Error {
	return &Error{Kind: ErrKindBackend, Message: message}
}

// NewInternalError creates a generic error for unexpected failures (400).
func NewInternalError(message string) *Error {
	return &Error{Kind: ErrKindInternal, Message: message}
}
