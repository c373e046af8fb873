// Package firecrawl is a client for the website content-extraction API.
package firecrawl

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

const defaultBaseURL = "https://api.firecrawl.dev"

// HTTPClient abstracts HTTP requests to simplify testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the map and scrape endpoints of the extraction service.
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

// NewClient builds an extraction client.
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

// PageFields is the structured content requested from one page scrape.
type PageFields struct {
	About    string `json:"about"`
	Services string `json:"services"`
	Hours    string `json:"hours"`
	Pricing  string `json:"pricing"`
}

// Map discovers site URLs matching the search hint, up to limit.
func (c *Client) Map(ctx context.Context, siteURL, search string, limit int) ([]string, error) {
	payload := map[string]any{
		"url":   siteURL,
		"limit": limit,
	}
	if search != "" {
		payload["search"] = search
	}

	var result struct {
		Links []string `json:"links"`
	}
	if err := c.post(ctx, "/v1/map", payload, &result); err != nil {
		return nil, err
	}
	return result.Links, nil
}

// Scrape extracts the structured business fields from one page.
func (c *Client) Scrape(ctx context.Context, pageURL string) (*PageFields, error) {
	payload := map[string]any{
		"url":             pageURL,
		"formats":         []string{"json"},
		"onlyMainContent": true,
		"jsonOptions": map[string]any{
			"schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"about":    map[string]string{"type": "string"},
					"services": map[string]string{"type": "string"},
					"hours":    map[string]string{"type": "string"},
					"pricing":  map[string]string{"type": "string"},
				},
			},
		},
	}

	var result struct {
		Data struct {
			JSON *PageFields `json:"json"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/v1/scrape", payload, &result); err != nil {
		return nil, err
	}
	if result.Data.JSON == nil {
		return nil, fmt.Errorf("firecrawl: scrape returned no structured data")
	}
	return result.Data.JSON, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("firecrawl: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("firecrawl: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if rid := requestid.FromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("firecrawl: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("firecrawl: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("firecrawl: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("firecrawl: decode response: %w", err)
		}
	}
	return nil
}
