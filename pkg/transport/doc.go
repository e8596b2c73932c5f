// Package transport defines the handler interfaces and middleware chain
// for the duckgate HTTP/SSE transport layer.
//
// The transport layer bridges external clients and the gateway engine.
// It deserializes incoming requests into the wire types of pkg/api,
// dispatches them for processing, and serializes responses back to the
// client as either a single JSON body or an SSE stream of
// chat.completion.chunk frames.
//
// # Handler Interfaces
//
// ChatCompleter is the single handler contract: it receives a request
// and writes the result through a ChatWriter, which abstracts streaming
// and non-streaming output so the handler never touches the underlying
// protocol. WriteChunk and WriteCompletion are mutually exclusive on
// one writer.
//
// # Middleware
//
// The middleware chain wraps ChatCompleter with cross-cutting concerns:
// panic recovery, request ID assignment (X-Request-ID), and structured
// logging via log/slog. This package uses only the standard library;
// HTTP serving lives in the http subpackage.
package transport
