package cloudflare

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
)

// Client is a thin typed client over the Cloudflare v4 REST API, bound to
// one (API token, account ID) pair. It performs no retries and no
// client-side rate limiting.
type Client struct {
	baseURL   string
	apiToken  string
	accountID string
	http      *http.Client
}

// NewClient creates a client for the given API base URL and credentials.
func NewClient(baseURL, apiToken, accountID string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiToken:  apiToken,
		accountID: accountID,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// request performs one API call and normalizes any non-2xx response into an
// *APIError carrying the HTTP status and response body.
func (c *Client) request(ctx context.Context, method, endpoint, contentType string, body io.Reader) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudflare request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	return &env, nil
}

// ListZones looks up zones in the account, optionally filtered by name.
func (c *Client) ListZones(ctx context.Context, name string) ([]Zone, error) {
	endpoint := "/zones"
	if name != "" {
		endpoint += "?name=" + url.QueryEscape(name)
	}

	env, err := c.request(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return nil, err
	}

	var zones []Zone
	if len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, &zones); err != nil {
			return nil, fmt.Errorf("decode zones: %w", err)
		}
	}
	return zones, nil
}

// DeployScript upserts a Worker script by name (PUT semantics, idempotent).
func (c *Client) DeployScript(ctx context.Context, scriptName, source string) error {
	endpoint := fmt.Sprintf("/accounts/%s/workers/scripts/%s", c.accountID, url.PathEscape(scriptName))
	_, err := c.request(ctx, http.MethodPut, endpoint, "application/javascript", strings.NewReader(source))
	return err
}

// DeleteScript removes a Worker script by name. The platform's rejection
// (including "script not found") propagates as an *APIError.
func (c *Client) DeleteScript(ctx context.Context, scriptName string) error {
	endpoint := fmt.Sprintf("/accounts/%s/workers/scripts/%s", c.accountID, url.PathEscape(scriptName))
	_, err := c.request(ctx, http.MethodDelete, endpoint, "", nil)
	return err
}

type routeBody struct {
	Pattern string `json:"pattern"`
	Script  string `json:"script"`
}

// CreateRoute binds a URL pattern to a script within a zone and returns the
// route Cloudflare assigned. Pattern conflicts fail remotely.
func (c *Client) CreateRoute(ctx context.Context, zoneID, pattern, scriptName string) (*Route, error) {
	payload, err := json.Marshal(routeBody{Pattern: pattern, Script: scriptName})
	if err != nil {
		return nil, fmt.Errorf("marshal route: %w", err)
	}

	endpoint := fmt.Sprintf("/zones/%s/workers/routes", zoneID)
	env, err := c.request(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var route Route
	if len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, &route); err != nil {
			return nil, fmt.Errorf("decode route: %w", err)
		}
	}
	return &route, nil
}

// UpdateRoute rewrites an existing route's pattern and script binding.
func (c *Client) UpdateRoute(ctx context.Context, zoneID, routeID, pattern, scriptName string) error {
	payload, err := json.Marshal(routeBody{Pattern: pattern, Script: scriptName})
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}

	endpoint := fmt.Sprintf("/zones/%s/workers/routes/%s", zoneID, routeID)
	_, err = c.request(ctx, http.MethodPut, endpoint, "application/json", bytes.NewReader(payload))
	return err
}

// DeleteRoute removes a route from a zone.
func (c *Client) DeleteRoute(ctx context.Context, zoneID, routeID string) error {
	endpoint := fmt.Sprintf("/zones/%s/workers/routes/%s", zoneID, routeID)
	_, err := c.request(ctx, http.MethodDelete, endpoint, "", nil)
	return err
}

// ListRoutes returns all Worker routes configured for a zone.
func (c *Client) ListRoutes(ctx context.Context, zoneID string) ([]Route, error) {
	endpoint := fmt.Sprintf("/zones/%s/workers/routes", zoneID)
	env, err := c.request(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return nil, err
	}

	var routes []Route
	if len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, &routes); err != nil {
			return nil, fmt.Errorf("decode routes: %w", err)
		}
	}
	return routes, nil
}
