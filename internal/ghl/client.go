package ghl

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

	"github.com/minbrown/retell-widget/internal/requestid"
)

const (
	defaultBaseURL = "https://services.leadconnectorhq.com"

	// API versions the platform expects per endpoint family.
	versionContacts  = "2021-07-28"
	versionCalendars = "2021-04-15"
)

// APIError represents a non-success response from the CRM. It is never
// retried: the platform answered, it just refused.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ghl: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ghl: status %d", e.StatusCode)
}

// HTTPClient abstracts HTTP requests to simplify testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the CRM REST API with bounded retry on transport failures.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	apiKey     string
	locationID string
	attempts   int
	backoff    time.Duration
}

// ClientOption configures optional client behaviour.
type ClientOption func(*Client)

// WithBaseURL overrides the production API host (used by tests).
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPClient) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry sets the transport retry budget. Attempts below 1 are clamped.
func WithRetry(attempts int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if attempts >= 1 {
			c.attempts = attempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// NewClient builds a CRM client for one location.
func NewClient(apiKey, locationID string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		locationID: locationID,
		attempts:   3,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one API request, retrying transport-level failures with linear
// backoff. Application-level errors (any non-2xx) are returned as *APIError
// without retry. The response body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path, version string, query url.Values, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("ghl: marshal payload: %w", err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var resp *http.Response
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("ghl: create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Version", version)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if rid := requestid.FromContext(ctx); rid != "" {
			req.Header.Set("X-Request-ID", rid)
		}

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("ghl: request aborted: %w", ctx.Err())
		}
		if attempt < c.attempts {
			select {
			case <-time.After(c.backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return fmt.Errorf("ghl: request aborted: %w", ctx.Err())
			}
		}
	}
	if lastErr != nil {
		return fmt.Errorf("ghl: request failed after %d attempts: %w", c.attempts, lastErr)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ghl: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(raw),
			Body:       string(raw),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("ghl: decode response: %w", err)
		}
	}
	return nil
}

// extractMessage pulls the human-readable message out of an error body.
// The API returns either a string or a list of strings under "message".
func extractMessage(raw []byte) string {
	var single struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &single); err == nil && single.Message != "" {
		return single.Message
	}
	var multi struct {
		Message []string `json:"message"`
	}
	if err := json.Unmarshal(raw, &multi); err == nil && len(multi.Message) > 0 {
		return strings.Join(multi.Message, "; ")
	}
	return ""
}
