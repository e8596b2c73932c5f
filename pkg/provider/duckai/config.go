package duckai

import "time"

// Default endpoint and header values for the public duckchat backend.
const (
	DefaultBaseURL    = "https://duckduckgo.com"
	defaultStatusPath = "/duckchat/v1/status"
	defaultChatPath   = "/duckchat/v1/chat"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultReferer   = "https://duckduckgo.com/"
)

// Config holds configuration for the duckchat adapter.
type Config struct {
	// BaseURL is the backend origin (e.g. "https://duckduckgo.com").
	BaseURL string

	// StatusPath is the session token probe endpoint.
	StatusPath string

	// ChatPath is the chat endpoint.
	ChatPath string

	// UserAgent and Referer mimic a legitimate browser client. The
	// backend rejects requests without them.
	UserAgent string
	Referer   string

	// Timeout applies to the token probe only. Chat calls are bounded
	// by the request context; a stream can legitimately outlive any
	// fixed timeout.
	Timeout time.Duration
}

// DefaultConfig returns a Config targeting the public backend.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		StatusPath: defaultStatusPath,
		ChatPath:   defaultChatPath,
		UserAgent:  defaultUserAgent,
		Referer:    defaultReferer,
		Timeout:    30 * time.Second,
	}
}

// applyDefaults fills in zero-value fields.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.StatusPath == "" {
		c.StatusPath = d.StatusPath
	}
	if c.ChatPath == "" {
		c.ChatPath = d.ChatPath
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Referer == "" {
		c.Referer = d.Referer
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
}
