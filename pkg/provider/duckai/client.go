package duckai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/duckgate/duckgate/pkg/api"
	"github.com/duckgate/duckgate/pkg/observability"
)

// Client talks to the duckchat backend. It is stateless across
// requests: every chat call consumes exactly one session token, either
// supplied by the caller or freshly minted by Token.
type Client struct {
	cfg    Config
	client *http.Client

	// baseHeaders is the fixed header set the backend expects,
	// constructed once and cloned per request.
	baseHeaders http.Header
}

// New creates a Client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	h := http.Header{}
	h.Set("User-Agent", cfg.UserAgent)
	h.Set("Referer", cfg.Referer)
	h.Set("Accept", "text/event-stream")
	h.Set("Accept-Language", "en-US,en;q=0.9")

	return &Client{
		cfg:         cfg,
		client:      &http.Client{Timeout: cfg.Timeout},
		baseHeaders: h,
	}, nil
}

// Name returns the adapter identifier.
func (c *Client) Name() string {
	return "duckai"
}

// Token acquires a fresh session token by probing the status endpoint
// and reading the x-vqd-4 response header. It fails if the probe errors,
// returns a non-success status, or omits the header. No retry is
// attempted; the caller decides whether to fail the whole request.
func (c *Client) Token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+c.cfg.StatusPath, nil)
	if err != nil {
		return "", api.NewTokenError("creating token probe: " + err.Error())
	}
	req.Header = c.baseHeaders.Clone()
	req.Header.Set(tokenAcceptHeader, "1")

	resp, err := c.client.Do(req)
	if err != nil {
		observability.TokenProbesTotal.WithLabelValues("error").Inc()
		return "", api.NewTokenError("token probe failed: " + err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.TokenProbesTotal.WithLabelValues("error").Inc()
		return "", api.NewTokenError(fmt.Sprintf("token probe returned status %d", resp.StatusCode))
	}

	token := resp.Header.Get(TokenHeader)
	if token == "" {
		observability.TokenProbesTotal.WithLabelValues("error").Inc()
		return "", api.NewTokenError("token probe response missing " + TokenHeader + " header")
	}

	observability.TokenProbesTotal.WithLabelValues("ok").Inc()
	return token, nil
}

// chat performs the backend chat call and returns the raw body stream.
// The caller owns the returned body and must close it on every exit
// path. A non-success status surfaces the backend's raw error text.
//
// The configured timeout is deliberately not applied here; the request
// context bounds the call instead, so a caller disconnect tears down
// the backend connection.
func (c *Client) chat(ctx context.Context, req *api.ChatCompletionRequest, token string) (io.ReadCloser, error) {
	payload := translateRequest(req)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, api.NewInternalError("marshaling backend request: " + err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.ChatPath, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewInternalError("creating backend request: " + err.Error())
	}
	httpReq.Header = c.baseHeaders.Clone()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(TokenHeader, token)

	streamClient := &http.Client{Transport: c.client.Transport}

	start := time.Now()
	resp, err := streamClient.Do(httpReq)
	if err != nil {
		observability.BackendRequestsTotal.WithLabelValues(c.Name(), req.Model, "error").Inc()
		return nil, api.NewInternalError("backend connection error: " + err.Error())
	}
	observability.BackendLatency.WithLabelValues(c.Name(), req.Model).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		observability.BackendRequestsTotal.WithLabelValues(c.Name(), req.Model, "error").Inc()
		return nil, api.NewBackendError(readErrorText(resp.Body, resp.StatusCode))
	}

	observability.BackendRequestsTotal.WithLabelValues(c.Name(), req.Model, "ok").Inc()
	return resp.Body, nil
}

// readErrorText extracts the backend's error body as plain text,
// falling back to the status code when the body is empty or unreadable.
func readErrorText(body io.Reader, status int) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Sprintf("backend returned status %d", status)
	}
	return strings.TrimSpace(string(data))
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
