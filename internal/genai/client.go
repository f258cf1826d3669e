package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"prepdeck-backend/internal/metrics"
)

type Config struct {
	// required
	BaseURL string
	APIKey  string

	Model           string        // default: gpt-4o-mini
	Temperature     float32       // default: 0.7
	MaxTokens       int           // default: 4096
	UpstreamTimeout time.Duration // per-request timeout (default: 60s)
	MaxRetries      int           // retry attempts (default: 2)
	BaseBackoff     time.Duration // initial backoff (default: 100ms)

	// Custom HTTP client (for testing or special configs)
	HTTPClient *http.Client
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("BaseURL is required")
	}
	if c.APIKey == "" {
		return errors.New("APIKey is required")
	}
	return nil
}

// WithDefaults returns a copy of Config with sane defaults applied.
func (c *Config) WithDefaults() Config {
	cfg := *c
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	return cfg
}

type client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Generator backed by an OpenAI-compatible endpoint.
func NewClient(cfg Config, logger *zap.Logger) (Generator, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}

	return &client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.Named("genai"),
	}, nil
}

// OpenAI-style wire shapes.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

type upstreamErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// complete sends one prompt and returns the model's raw text.
func (c *client) complete(parentCtx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.GenerationLatencySeconds.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(parentCtx, c.cfg.UpstreamTimeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("genai: marshal request: %w", err)
	}

	url := c.cfg.BaseURL + "/v1/chat/completions"

	// doOnce builds a fresh *http.Request for each attempt.
	doOnce := func(ctx context.Context, body []byte) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("genai: build HTTP request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(req)
	}

	resp, err := c.doWithRetry(ctx, body, doOnce)
	if err != nil {
		c.logger.Error("generation request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)

		var uerr upstreamErrorResponse
		if err := json.Unmarshal(raw, &uerr); err == nil && uerr.Error.Message != "" {
			c.logger.Error("generation upstream error",
				zap.Int("status", resp.StatusCode),
				zap.String("error_type", uerr.Error.Type),
				zap.String("error_message", uerr.Error.Message),
			)
			return "", fmt.Errorf("genai: upstream %d: %s (%s)",
				resp.StatusCode, uerr.Error.Message, uerr.Error.Type)
		}

		c.logger.Error("generation upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(raw), 200)),
		)
		return "", fmt.Errorf("genai: upstream %d: %s",
			resp.StatusCode, truncate(string(raw), 200))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("genai: decode upstream response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("genai: provider returned no choices")
	}

	c.logger.Info("generation request completed",
		zap.String("model", c.cfg.Model),
		zap.Duration("duration", time.Since(start)),
	)
	return out.Choices[0].Message.Content, nil
}

// truncate limits string length for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
