// Package retell is a minimal client for the voice provider's web-call API.
package retell

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minbrown/retell-widget/internal/requestid"
)

const defaultBaseURL = "https://api.retellai.com"

// HTTPClient abstracts HTTP requests to simplify testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client creates web-call sessions with the voice provider.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	apiKey     string
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

// NewClient builds a voice provider client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WebCallRequest describes one call session to create. Metadata round-trips
// verbatim through the provider into the post-call webhook; DynamicVariables
// feed the agent's prompt templating.
type WebCallRequest struct {
	AgentID          string            `json:"agent_id"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
	DynamicVariables map[string]string `json:"retell_llm_dynamic_variables,omitempty"`
}

// WebCall is the provider's session handle. The access token is what the
// browser widget needs to join the live call.
type WebCall struct {
	CallID      string `json:"call_id"`
	AccessToken string `json:"access_token"`
}

// CreateWebCall starts a voice session. Call setup is latency-sensitive so
// failures are never retried; a stale retry would open a duplicate session.
func (c *Client) CreateWebCall(ctx context.Context, req WebCallRequest) (*WebCall, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("retell: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/create-web-call", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("retell: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if rid := requestid.FromContext(ctx); rid != "" {
		httpReq.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("retell: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("retell: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("retell: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var call WebCall
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, fmt.Errorf("retell: decode response: %w", err)
	}
	if call.AccessToken == "" {
		return nil, fmt.Errorf("retell: response missing access token")
	}
	return &call, nil
}
