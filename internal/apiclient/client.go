// Package apiclient is the REST client for the external voting API.
package apiclient

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

	"golang.org/x/oauth2"

	"votedesk/internal/session"
	apperrors "votedesk/pkg/errors"
	"votedesk/pkg/logger"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// Client talks to the voting API. A Client is safe for concurrent use;
// WithTokenSource derives authenticated copies sharing the connection pool.
type Client struct {
	baseURL    string
	httpClient *http.Client
	base       http.RoundTripper
	logger     *logger.Logger
}

// New creates a client with a fixed base URL and per-request timeout
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	base := http.DefaultTransport
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: base,
		},
		base:   base,
		logger: log,
	}
}

// WithTokenSource returns a copy that sends "Authorization: Bearer <token>"
// whenever ts yields a token. A source failing with session.ErrNoToken
// leaves the request unauthenticated.
func (c *Client) WithTokenSource(ts oauth2.TokenSource) *Client {
	return c.WithTokenSourceFunc(func(context.Context) oauth2.TokenSource { return ts })
}

// WithTokenSourceFunc is WithTokenSource with the source resolved from each
// request's context, so one client can serve every browser session.
func (c *Client) WithTokenSourceFunc(fn func(ctx context.Context) oauth2.TokenSource) *Client {
	clone := *c
	clone.httpClient = &http.Client{
		Timeout:   c.httpClient.Timeout,
		Transport: &bearerTransport{source: fn, base: c.base},
	}
	return &clone
}

// bearerTransport sets the bearer header from an oauth2.TokenSource resolved
// per request. Unlike oauth2.Transport, a missing token (session.ErrNoToken)
// sends the request without Authorization instead of failing it.
type bearerTransport struct {
	source func(ctx context.Context) oauth2.TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.source(req.Context()).Token()
	if err != nil && !errors.Is(err, session.ErrNoToken) {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}
	if tok == nil || !tok.Valid() {
		return t.base.RoundTrip(req)
	}
	authed := req.Clone(req.Context())
	tok.SetAuthHeader(authed)
	return t.base.RoundTrip(authed)
}

// envelope fields shared by every API response
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// pagination block of list responses
type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// do sends one request. out may be nil. Failures come back as *errors.AppError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("Failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperrors.NewInternalError("Failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		appErr := apperrors.NewNetworkError(err)
		c.logFailure(method, path, 0, appErr, time.Since(start))
		return appErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		appErr := apperrors.FromResponse(resp.StatusCode, raw)
		c.logFailure(method, path, resp.StatusCode, appErr, time.Since(start))
		return appErr
	}

	c.logger.WithFields(map[string]interface{}{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("api request completed")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		appErr := apperrors.NewInternalError("Unexpected response from server", err)
		c.logFailure(method, path, resp.StatusCode, appErr, time.Since(start))
		return appErr
	}
	return nil
}

func (c *Client) logFailure(method, path string, status int, appErr *apperrors.AppError, dur time.Duration) {
	c.logger.WithFields(map[string]interface{}{
		"method":     method,
		"path":       path,
		"status":     status,
		"error_type": string(appErr.Type),
		"message":    appErr.Message,
		"duration":   dur.String(),
	}).WithError(appErr.Internal).Warn("api request failed")
}

func pathf(format string, ids ...string) string {
	escaped := make([]interface{}, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, escaped...)
}
