// Package client is the contractor-side SDK for the estimate workflow:
// inbox operations, debounced draft autosave, estimate submission and
// list refresh against the marketplace API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	httpc   *http.Client
	retries int
	token   string
	log     *slog.Logger
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		retries: 2,
		log:     slog.Default(),
	}
}

// SetToken installs the bearer token from a login response.
func (c *Client) SetToken(token string) {
	c.token = token
}

// envelope is the common response wrapper every endpoint shares.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// call performs one API request with retry on transport errors and 5xx,
// decodes the envelope, and unmarshals the body into out when given.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &NetworkError{Op: path, Err: err}
		}
	}

	var resp *http.Response
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return &NetworkError{Op: path, Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err = c.httpc.Do(req)
		if err == nil && resp.StatusCode < 500 {
			break
		}
		if resp != nil {
			resp.Body.Close()
			resp = nil
		}
		if attempt < c.retries {
			c.log.Warn("request failed, retrying", "path", path, "attempt", attempt+1, "error", err)
			select {
			case <-ctx.Done():
				return &NetworkError{Op: path, Err: ctx.Err()}
			case <-time.After(time.Duration(1<<attempt) * 200 * time.Millisecond):
			}
		}
	}
	if err != nil {
		return &NetworkError{Op: path, Err: err}
	}
	if resp == nil {
		return &NetworkError{Op: path, Err: fmt.Errorf("no response after %d attempts", c.retries+1)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NetworkError{Op: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &NetworkError{Op: path, Err: err}
	}
	if !env.Success {
		return &BackendError{Message: env.Message}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &NetworkError{Op: path, Err: err}
		}
	}
	return nil
}

// download fetches a binary endpoint (workbook export).
func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &NetworkError{Op: path, Err: err}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Op: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return io.ReadAll(resp.Body)
}
