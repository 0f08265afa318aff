// Package openrouter provides the client for the upstream model
// aggregator's chat-completion and model-listing APIs.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/d-wern/portfolio-assistant/internal/model"
	"github.com/d-wern/portfolio-assistant/pkg/metrics"
)

const (
	// DefaultBaseURL is the aggregator's API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultTimeout bounds a single completion attempt.
	DefaultTimeout = 45 * time.Second

	// maxResponseSize caps response bodies to keep a misbehaving
	// upstream from exhausting memory.
	maxResponseSize = 10 * 1024 * 1024
)

// ErrEmptyCompletion marks an HTTP-success response that carried no
// text. Usually a transient provider hiccup, so it is retriable.
var ErrEmptyCompletion = errors.New("upstream returned empty completion")

// APIError is a non-success outcome reported by the upstream, either as
// a non-2xx status or as an error object inside a 200 body.
type APIError struct {
	Status   int
	Message  string
	Provider string
}

func (e *APIError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("upstream error (status %d, provider %s): %s", e.Status, e.Provider, e.Message)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
}

// ChatRequest is a completion request. Models carries the provider-side
// fallback list consulted when Model itself fails.
type ChatRequest struct {
	Model       string              `json:"model"`
	Models      []string            `json:"models,omitempty"`
	Messages    []model.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code     int    `json:"code"`
		Message  string `json:"message"`
		Metadata struct {
			ProviderName string `json:"provider_name"`
		} `json:"metadata"`
	} `json:"error"`
}

// Completion is a successful completion outcome.
type Completion struct {
	Content   string
	Model     string
	LatencyMs int64
}

// Config holds client construction parameters.
type Config struct {
	BaseURL string
	APIKey  string
	Referer string
	Title   string
	Timeout time.Duration
}

// Client talks to the upstream aggregator. A single pooled transport is
// shared by all requests.
type Client struct {
	baseURL string
	apiKey  string
	referer string
	title   string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a client. The API key is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("upstream API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		referer: cfg.Referer,
		title:   cfg.Title,
		timeout: cfg.Timeout,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}, nil
}

// Complete issues one completion attempt. Each call carries its own
// timeout; classification of the outcome is left to IsRetriable.
func (c *Client) Complete(ctx context.Context, req *ChatRequest) (*Completion, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.UpstreamAttemptsTotal.WithLabelValues(req.Model, "transport_error").Inc()
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.UpstreamAttemptsTotal.WithLabelValues(req.Model, "transport_error").Inc()
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamAttemptsTotal.WithLabelValues(req.Model, "http_error").Inc()
		return nil, &APIError{Status: resp.StatusCode, Message: truncate(string(body), 512)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.UpstreamAttemptsTotal.WithLabelValues(req.Model, "bad_payload").Inc()
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// An error object in a 200 body is authoritative over any content.
	if parsed.Error != nil {
		metrics.UpstreamAttemptsTotal.WithLabelValues(req.Model, "provider_error").Inc()
		status := parsed.Error.Code
		if status == 0 {
			status = http.StatusBadGateway
		}
		return nil, &APIError{
			Status:   status,
			Message:  "provider returned error: " + parsed.Error.Message,
			Provider: parsed.Error.Metadata.ProviderName,
		}
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		metrics.UpstreamAttemptsTotal.WithLabelValues(req.Model, "empty").Inc()
		return nil, ErrEmptyCompletion
	}

	served := parsed.Model
	if served == "" {
		served = req.Model
	}

	metrics.UpstreamAttemptsTotal.WithLabelValues(served, "success").Inc()

	return &Completion{
		Content:   parsed.Choices[0].Message.Content,
		Model:     served,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
