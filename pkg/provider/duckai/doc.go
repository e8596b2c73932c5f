// Package duckai adapts the duckchat backend for the gateway. It
// acquires the ephemeral x-vqd-4 session token via the status probe,
// translates chat-completion requests into the backend's request body,
// bridges the backend's line-delimited event stream into
// chat.completion.chunk frames, and aggregates the same stream into a
// single response for non-streaming callers.
//
// The backend is not contract-bound to this gateway: malformed stream
// lines are skipped rather than aborting delivery of everything parsed
// so far, and only the [DONE] sentinel produces the terminal frame.
package duckai
