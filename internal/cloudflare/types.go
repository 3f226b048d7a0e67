package cloudflare

import (
	"encoding/json"
	"fmt"
)

// Zone is a DNS zone in the remote account.
type Zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Route is a Worker route binding a URL pattern to a script within a zone.
type Route struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`
	Script  string `json:"script"`
}

// envelope is the common Cloudflare v4 response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Errors  []apiMessage    `json:"errors"`
}

type apiMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIError is the single error type every non-2xx Cloudflare response is
// normalized into. The caller decides whether to retry or surface it.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudflare api error: %d - %s", e.StatusCode, e.Body)
}
