package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tugapp/tug-cli/internal/core"
	"github.com/tugapp/tug-cli/internal/logging"
)

// APIError is returned when the Tug API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// Client is the HTTP wrapper around the Tug REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logging.Logger
}

// NewClient creates a new API client. baseURL should not include the API
// version segment; it is appended here.
func NewClient(baseURL, apiKey string, log *logging.Logger) *Client {
	if baseURL == "" {
		baseURL = core.DefaultAPIBaseURL
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: fmt.Sprintf("%s/%s", baseURL, core.APIVersion),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Do performs a request and decodes the JSON response into out when out is
// non-nil. Retries automatically on connection errors, HTTP 5xx, and 429
// with exponential back-off, honoring Retry-After on 429.
func (c *Client) Do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	urlStr := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(query) > 0 {
		urlStr = fmt.Sprintf("%s?%s", urlStr, query.Encode())
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	c.log.Debug("api request", "method", method, "url", urlStr)

	maxRetries := 3
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, urlStr, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries && ctx.Err() == nil {
				wait := time.Duration(1<<(attempt-1)) * time.Second
				c.log.Debug("request failed, retrying", "attempt", attempt, "wait", wait, "error", err)
				time.Sleep(wait)
				continue
			}
			return fmt.Errorf("request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
			if attempt < maxRetries {
				wait := time.Duration(1<<(attempt-1)) * time.Second
				if resp.StatusCode == http.StatusTooManyRequests {
					if ra := resp.Header.Get("Retry-After"); ra != "" {
						if secs, err := strconv.Atoi(ra); err == nil {
							wait = time.Duration(secs) * time.Second
						}
					}
				}
				c.log.Debug("retryable status, retrying", "attempt", attempt, "status", resp.StatusCode, "wait", wait)
				time.Sleep(wait)
				continue
			}
			return lastErr
		}

		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		}

		c.log.Debug("api response", "status", resp.StatusCode, "bytes", len(respBody))

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("parse JSON response: %w", err)
			}
		}
		return nil
	}

	return lastErr
}
