// Package cleaner provides an HTTP client for a remote transcript-cleaning
// service implementing contract.TranscriptCleaner.
package cleaner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/callsense-ai/callsense/agent/contract"
)

const maxResponseSizeBytes = 2 << 20

var ErrEmptyResponse = errors.New("cleaning service returned no content")

type Config struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Option customizes the Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client calls a cleaning service over HTTP: POST {"text": ...} to the
// configured URL, expecting {"cleaned": ...} back.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ contract.TranscriptCleaner = (*Client)(nil)

type cleanRequest struct {
	Text string `json:"text"`
}

type cleanResponse struct {
	Cleaned string `json:"cleaned"`
	Error   string `json:"error,omitempty"`
}

func New(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("cleaning service url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid cleaning service url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

func (c *Client) Clean(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(cleanRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal clean request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build clean request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute clean request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", fmt.Errorf("read clean response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("cleaning service http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed cleanResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode clean response: %w", err)
	}
	if parsed.Error != "" {
		return "", errors.New(parsed.Error)
	}
	if parsed.Cleaned == "" {
		return "", ErrEmptyResponse
	}

	return parsed.Cleaned, nil
}
