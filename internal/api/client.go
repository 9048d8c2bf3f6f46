// Package api provides the HTTP client for the AlphaQuant backend.
//
// Each method wraps exactly one remote read or write. Methods never retry;
// retry policy belongs to the poll scheduler (reads) or the user (writes).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/logging"
	"alphaquant-console/internal/resilience"
)

// Config holds client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	AuthToken string
}

// Client is the AlphaQuant backend API client.
type Client struct {
	baseURL   string
	authToken string
	http      *http.Client
	breaker   *resilience.Breaker
	logger    zerolog.Logger
}

// New creates a new backend client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.ErrNotConfigured
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		authToken: cfg.AuthToken,
		http:      &http.Client{Timeout: timeout},
		breaker:   resilience.NewBreaker(resilience.DefaultConfig()),
		logger:    logger,
	}, nil
}

// get performs a GET request. opts, when non-nil, is encoded into the query
// string via its `url` struct tags.
func (c *Client) get(ctx context.Context, path string, opts interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	if opts != nil {
		values, err := query.Values(opts)
		if err != nil {
			return fmt.Errorf("encoding query for %s: %w", path, err)
		}
		if encoded := values.Encode(); encoded != "" {
			endpoint += "?" + encoded
		}
	}
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

// post performs a POST request with an optional JSON body.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, c.baseURL+path, body, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	if err := c.breaker.Allow(); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.NewRequestError(method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	logging.LogAPICall(c.logger, method, endpoint, time.Since(start), err)
	if err != nil {
		c.breaker.Record(true)
		return errors.NewRequestError(method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		c.breaker.Record(true)
		return errors.NewRequestError(method, endpoint, err)
	}

	// A response the backend produced, even an error one, means the
	// connection is healthy. Only 5xx counts against the breaker.
	c.breaker.Record(resp.StatusCode >= 500)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", endpoint, err)
		}
	}
	return nil
}

// errorEnvelope matches the backend's error body. Detail is either a plain
// string or a structured classification object.
type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Code               string  `json:"code"`
	Message            string  `json:"message"`
	Reason             string  `json:"reason"`
	RiskScore          float64 `json:"risk_score"`
	CompatibilityScore float64 `json:"compatibility_score"`
}

func decodeAPIError(status int, body []byte) *errors.APIError {
	apiErr := &errors.APIError{
		Status:  status,
		Message: http.StatusText(status),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
			apiErr.Message = trimmed
		}
		return apiErr
	}

	var asString string
	if err := json.Unmarshal(envelope.Detail, &asString); err == nil {
		apiErr.Message = asString
		return apiErr
	}

	var detail errorDetail
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		apiErr.Code = detail.Code
		apiErr.Reason = detail.Reason
		apiErr.RiskScore = detail.RiskScore
		apiErr.CompatibilityScore = detail.CompatibilityScore
		if detail.Message != "" {
			apiErr.Message = detail.Message
		} else if detail.Reason != "" {
			apiErr.Message = detail.Reason
		}
	}
	return apiErr
}
