// Command server runs the duckgate chat-completions gateway.
//
// Configuration is layered: built-in defaults, then a YAML config file
// (via -config, DUCKGATE_CONFIG, ./config.yaml, or
// /etc/duckgate/config.yaml), then DUCKGATE_* environment overrides.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duckgate/duckgate/pkg/auth"
	"github.com/duckgate/duckgate/pkg/auth/apikey"
	"github.com/duckgate/duckgate/pkg/auth/jwt"
	"github.com/duckgate/duckgate/pkg/config"
	"github.com/duckgate/duckgate/pkg/gateway"
	"github.com/duckgate/duckgate/pkg/observability"
	"github.com/duckgate/duckgate/pkg/provider/duckai"
	transporthttp "github.com/duckgate/duckgate/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	setupLogging()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Upstream backend client.
	backend, err := duckai.New(duckai.Config{
		BaseURL:    cfg.Backend.BaseURL,
		StatusPath: cfg.Backend.StatusPath,
		ChatPath:   cfg.Backend.ChatPath,
		UserAgent:  cfg.Backend.UserAgent,
		Referer:    cfg.Backend.Referer,
		Timeout:    cfg.Backend.Timeout,
	})
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}
	defer backend.Close()

	eng, err := gateway.New(backend)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	authMW, err := buildAuthMiddleware(cfg)
	if err != nil {
		return fmt.Errorf("configuring auth: %w", err)
	}

	wrap := func(inner http.Handler) http.Handler {
		mux := http.NewServeMux()
		mux.Handle("/", inner)
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok\n"))
		})
		mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok\n"))
		})
		if cfg.Observability.Metrics.Enabled {
			mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
		}

		var h http.Handler = observability.MetricsMiddleware(mux)
		if authMW != nil {
			h = authMW(h)
		}
		return h
	}

	srv := transporthttp.NewServer(eng,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithHandlerWrapper(wrap),
	)

	slog.Info("gateway starting",
		"port", cfg.Server.Port,
		"backend", cfg.Backend.BaseURL,
		"auth", cfg.Auth.Type,
	)
	return srv.ListenAndServe()
}

// buildAuthMiddleware assembles the authenticator chain from config.
// Returns nil when auth is disabled.
func buildAuthMiddleware(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	if cfg.Auth.Type == "none" {
		return nil, nil
	}

	chain := &auth.Chain{DefaultDecision: auth.No}

	switch cfg.Auth.Type {
	case "apikey":
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.Auth.APIKeys))
		for _, k := range cfg.Auth.APIKeys {
			entries = append(entries, apikey.RawKeyEntry{
				Key: k.Key,
				Identity: auth.Identity{
					Subject:     k.Subject,
					ServiceTier: k.ServiceTier,
				},
			})
		}
		chain.Authenticators = append(chain.Authenticators, apikey.New(entries))
	case "jwt":
		chain.Authenticators = append(chain.Authenticators, jwt.New(jwt.Config{
			Issuer:   cfg.Auth.JWT.Issuer,
			Audience: cfg.Auth.JWT.Audience,
			JWKSURL:  cfg.Auth.JWT.JWKSURL,
		}))
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Auth.Type)
	}

	var limiter auth.RateLimiter
	if cfg.Auth.RateLimit.Enabled {
		tiers := make(map[string]auth.TierConfig, len(cfg.Auth.RateLimit.Tiers))
		for name, rpm := range cfg.Auth.RateLimit.Tiers {
			tiers[name] = auth.TierConfig{RequestsPerMinute: rpm}
		}
		limiter = auth.NewInProcessLimiter(tiers, cfg.Auth.RateLimit.DefaultRPM)
	}

	return auth.Middleware(chain, limiter, auth.DefaultBypassEndpoints), nil
}

// setupLogging configures slog from the DUCKGATE_LOG_LEVEL and
// DUCKGATE_LOG_FORMAT environment variables.
func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("DUCKGATE_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(os.Getenv("DUCKGATE_LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
