package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/duckgate/duckgate/pkg/api"
	"github.com/duckgate/duckgate/pkg/transport"
)

// Adapter serves the chat-completions API over HTTP. It routes requests
// to the handler and serializes responses.
type Adapter struct {
	completer transport.ChatCompleter
	mux       *http.ServeMux
	config    Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr        string
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		MaxBodySize: 1 << 20, // 1 MB
	}
}

// NewAdapter creates an HTTP adapter with the given ChatCompleter.
// Middleware is applied to the completer in the given order.
func NewAdapter(completer transport.ChatCompleter, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		completer = transport.Chain(middlewares...)(completer)
	}

	a := &Adapter{
		completer: completer,
		mux:       http.NewServeMux(),
		config:    cfg,
	}

	a.mux.HandleFunc("GET /v1/models", a.handleListModels)
	a.mux.HandleFunc("POST /v1/chat/completions", a.handleChatCompletion)

	return a
}

// Handler returns the http.Handler for this adapter. Use this to
// integrate with an http.Server or test with httptest. The returned
// handler includes HTTP-level middleware for CORS and X-Request-ID
// propagation.
func (a *Adapter) Handler() http.Handler {
	return corsMiddleware(httpRequestIDMiddleware(a.mux))
}

// handleListModels handles GET /v1/models. The catalog is static and
// never touches the backend.
func (a *Adapter) handleListModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(api.ListModels())
}

// handleChatCompletion handles POST /v1/chat/completions.
func (a *Adapter) handleChatCompletion(w http.ResponseWriter, r *http.Request) {
	// Validate Content-Type, ignoring parameters like charset.
	ct, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	ct = strings.TrimSpace(ct)
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	// Limit body size.
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteErrorResponse(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Schema validation reports the first violation.
	if verr := api.ValidateChatRequest(&req); verr != nil {
		transport.WriteError(w, verr)
		return
	}

	// A caller-supplied session token bypasses the token probe.
	ctx := r.Context()
	if tok := r.Header.Get(transport.SessionTokenHeader); tok != "" {
		ctx = transport.ContextWithSessionToken(ctx, tok)
	}

	rw := newChatWriter(w)
	if err := a.completer.CreateChatCompletion(ctx, &req, rw); err != nil {
		// Once frames are on the wire the stream just ends short; a
		// trailing JSON error would corrupt the event stream.
		if rw.hasStartedStreaming() {
			return
		}
		transport.WriteError(w, err)
	}
}

// httpRequestIDMiddleware is HTTP-level middleware that propagates the
// X-Request-ID header. If present in the request, it is forwarded to
// the response. After the handler runs, it checks the context for a
// request ID (set by the transport-level RequestID middleware) and adds
// it to the response headers if not already set.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If client sent X-Request-ID, propagate it into context.
		if id := r.Header.Get("X-Request-ID"); id != "" {
			ctx := transport.ContextWithRequestID(r.Context(), id)
			r = r.WithContext(ctx)
		}
		rw := &requestIDResponseWriter{ResponseWriter: w, r: r}
		next.ServeHTTP(rw, r)
	})
}

// requestIDResponseWriter wraps http.ResponseWriter to inject the
// X-Request-ID header before the first write.
type requestIDResponseWriter struct {
	http.ResponseWriter
	r           *http.Request
	headersSent bool
}

func (w *requestIDResponseWriter) WriteHeader(statusCode int) {
	w.ensureRequestIDHeader()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *requestIDResponseWriter) Write(b []byte) (int, error) {
	w.ensureRequestIDHeader()
	return w.ResponseWriter.Write(b)
}

func (w *requestIDResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter for http.NewResponseController.
func (w *requestIDResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *requestIDResponseWriter) ensureRequestIDHeader() {
	if w.headersSent {
		return
	}
	w.headersSent = true
	if id := transport.RequestIDFromContext(w.r.Context()); id != "" {
		w.ResponseWriter.Header().Set("X-Request-ID", id)
	}
}
