package gemini

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rafaelqm/imovia/internal/retry"
)

// Config for the Gemini client.
type Config struct {
	APIKey     string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL    string        // default https://generativelanguage.googleapis.com/v1beta
	TextModel  string        // text + grounded extraction calls
	ImageModel string        // image-capable variant for edits
	Timeout    time.Duration // http client timeout

	// Retry budget for every operation; zero values take the gateway default
	// (3 attempts, 2s initial delay, x2 backoff).
	MaxAttempts       int
	InitialDelay      time.Duration
	BackoffMultiplier float64
}

type Client struct {
	cfg     Config
	http    *http.Client
	logger  *slog.Logger
	invoker *retry.Invoker
	policy  retry.Policy
}

func NewClient(cfg Config, logger *slog.Logger, invoker *retry.Invoker) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.5-flash"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "gemini-2.5-flash-image"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if invoker == nil {
		invoker = retry.NewInvoker(logger)
	}

	policy := retry.DefaultPolicy(isRetryable)
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialDelay > 0 {
		policy.InitialDelay = cfg.InitialDelay
	}
	if cfg.BackoffMultiplier >= 1 {
		policy.BackoffMultiplier = cfg.BackoffMultiplier
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		invoker: invoker,
		policy:  policy,
	}
}
