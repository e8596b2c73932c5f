// Command mock-backend runs a deterministic duckchat-style server for
// local development and conformance testing. It mints session tokens on
// the status endpoint and streams data: framed events on the chat
// endpoint, mirroring the upstream wire format.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"
)

const tokenHeader = "x-vqd-4"

var tokenCounter atomic.Int64

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /duckchat/v1/status", handleStatus)
	mux.HandleFunc("POST /duckchat/v1/chat", handleChat)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// handleStatus mints a fresh session token when the client sends the
// x-vqd-accept header, matching the upstream probe handshake.
func handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("x-vqd-accept") != "1" {
		http.Error(w, "missing x-vqd-accept header", http.StatusBadRequest)
		return
	}

	token := fmt.Sprintf("4-mock-%d", tokenCounter.Add(1))
	w.Header().Set(tokenHeader, token)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"0"}`))
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamEvent struct {
	Role    string `json:"role,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleChat validates the session token and streams a canned reply as
// line-delimited data: events terminated by the [DONE] sentinel.
func handleChat(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(tokenHeader)
	if token == "" {
		http.Error(w, `{"action":"error","type":"ERR_INVALID_VQD"}`, http.StatusBadRequest)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"action":"error","type":"ERR_BAD_REQUEST"}`, http.StatusBadRequest)
		return
	}
	if req.Model == "" || len(req.Messages) == 0 {
		http.Error(w, `{"action":"error","type":"ERR_BAD_REQUEST"}`, http.StatusBadRequest)
		return
	}

	// The upstream remaps system messages before the wire; a system
	// role here means the gateway's translation is broken.
	for _, m := range req.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			http.Error(w, `{"action":"error","type":"ERR_BAD_ROLE"}`, http.StatusBadRequest)
			return
		}
	}

	reply := replyFor(&req)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set(tokenHeader, token)

	flusher, _ := w.(http.Flusher)
	writeEvent := func(ev streamEvent) {
		data, _ := json.Marshal(ev)
		fmt.Fprintf(w, "data: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}

	// First event carries the role, the rest carry message fragments.
	writeEvent(streamEvent{Role: "assistant"})
	for _, word := range strings.SplitAfter(reply, " ") {
		writeEvent(streamEvent{Message: word})
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}

// replyFor produces a deterministic reply so tests can assert exact
// output.
func replyFor(req *chatRequest) string {
	last := req.Messages[len(req.Messages)-1].Content
	if strings.Contains(strings.ToLower(last), "hello") {
		return "Hello! How can I help you today?"
	}
	return fmt.Sprintf("You said: %s", last)
}
