// Package submit posts extracted form payloads to the backend function
// endpoint and returns its plain-text reply.
package submit

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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// HeaderRequestID carries a per-submission identifier to the backend.
const HeaderRequestID = "X-Request-ID"

// ErrNoFunction is returned when Submit is called without a function name.
var ErrNoFunction = errors.New("submit: function name is required")

// Result is the backend's reply. Body is the response text, shown verbatim
// in the result area whatever the status code.
type Result struct {
	Status    int
	Body      string
	RequestID string
}

// OK reports a 2xx status.
func (r Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client posts extracted payloads to POST <base>/<function>.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport. Timeouts are the client's own.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger injects a logger. Clients are silent by default.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a Client rooted at base, e.g. "http://localhost:8080" or
// "http://backend/api/".
func New(base string, options ...Option) (*Client, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("submit: parse base url %q: %w", base, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("submit: base url %q must be absolute", base)
	}

	c := &Client{
		base:   parsed,
		http:   http.DefaultClient,
		logger: log.New(io.Discard),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Endpoint returns the URL a function's payload is posted to.
func (c *Client) Endpoint(function string) string {
	endpoint := *c.base
	endpoint.Path = strings.TrimSuffix(c.base.Path, "/") + "/" + function
	endpoint.RawPath = strings.TrimSuffix(c.base.EscapedPath(), "/") + "/" + url.PathEscape(function)
	endpoint.RawQuery = ""
	endpoint.Fragment = ""
	return endpoint.String()
}

// Submit encodes payload as JSON and posts it to the function's endpoint.
// Transport failures are returned as errors; any HTTP response, including
// non-2xx ones, is returned as a Result. There is no retry.
func (c *Client) Submit(ctx context.Context, function string, payload any) (Result, error) {
	if function == "" {
		return Result{}, ErrNoFunction
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("submit: encode payload for %s: %w", function, err)
	}

	endpoint := c.Endpoint(function)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("submit: build request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain, */*")
	req.Header.Set(HeaderRequestID, requestID)

	c.logger.Debug("submitting", "function", function, "url", endpoint, "request_id", requestID, "bytes", len(body))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("submission failed", "function", function, "request_id", requestID, "err", err)
		return Result{RequestID: requestID}, fmt.Errorf("submit: post %s: %w", function, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Status: resp.StatusCode, RequestID: requestID}, fmt.Errorf("submit: read response for %s: %w", function, err)
	}

	result := Result{Status: resp.StatusCode, Body: string(text), RequestID: requestID}
	if !result.OK() {
		c.logger.Warn("backend returned non-2xx", "function", function, "status", resp.StatusCode, "request_id", requestID)
	} else {
		c.logger.Debug("submitted", "function", function, "status", resp.StatusCode, "request_id", requestID)
	}
	return result, nil
}
