// Package marketplace is the HTTP client of the marketplace REST API, the AI review
// service and the media store. Every call forwards the caller's bearer token.
package marketplace

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

	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/logger"
)

type tokenKey struct{}

// WithToken stores the caller's bearer token for upstream calls made with ctx
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token stored by WithToken
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Config holds the upstream endpoint and per-call timeouts
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	AIReviewTimeout time.Duration
	UploadTimeout   time.Duration
}

// Client calls the marketplace API
type Client struct {
	baseURL string
	http    *http.Client
	cfg     Config
}

// NewClient creates a marketplace client. Timeouts are applied per call through the context
// so that slow AI review and upload calls can get longer deadlines.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.AIReviewTimeout <= 0 {
		cfg.AIReviewTimeout = cfg.Timeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = cfg.Timeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		cfg:     cfg,
	}
}

// envelope is the response wrapper used by every marketplace endpoint
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	timeout     time.Duration
}

func (c *Client) jsonRequest(method, path string, payload interface{}) (request, error) {
	req := request{method: method, path: path}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("failed to marshal request: %w", err)
		}
		req.body = bytes.NewReader(body)
		req.contentType = "application/json"
	}
	return req, nil
}

// do performs req and decodes the envelope data into out when out is not nil
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	timeout := req.timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token := TokenFrom(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("method", req.method).Str("path", req.path).Msg("Upstream request failed")
		return fmt.Errorf("%w: %s %s: %v", apperrors.ErrUpstreamUnavailable, req.method, req.path, err)
	}
	defer resp.Body.Close()

	logger.Ctx(ctx).Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Upstream request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("%w: malformed response from %s: %v", apperrors.ErrUpstreamUnavailable, req.path, err)
		}
	}

	if resp.StatusCode >= 300 || (len(raw) > 0 && !env.Success) {
		return statusError(resp.StatusCode, env)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", apperrors.ErrUpstreamUnavailable, req.path, err)
	}
	return nil
}

// statusError maps an upstream failure onto the application error set
func statusError(status int, env envelope) error {
	message := env.Message
	if message == "" {
		message = http.StatusText(status)
	}

	var sentinel error
	switch {
	case status == http.StatusNotFound:
		sentinel = apperrors.ErrResourceNotFound
	case status == http.StatusUnauthorized:
		sentinel = apperrors.ErrTokenInvalid
	case status == http.StatusForbidden:
		sentinel = apperrors.ErrPermissionDenied
	case status == http.StatusConflict:
		sentinel = apperrors.ErrConflict
	case status >= 500:
		sentinel = apperrors.ErrUpstreamUnavailable
	default:
		sentinel = apperrors.ErrUpstreamRejected
	}

	ce := apperrors.NewCustomError(sentinel, message)
	if len(env.Errors) > 0 && string(env.Errors) != "null" {
		var details interface{}
		if err := json.Unmarshal(env.Errors, &details); err == nil {
			ce = ce.WithDetails(map[string]interface{}{"upstream": details, "status": status})
		}
	}
	return ce
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	err := c.do(ctx, request{method: http.MethodGet, path: path, query: query}, &out)
	return out, err
}

func send[T any](ctx context.Context, c *Client, method, path string, payload interface{}) (T, error) {
	var out T
	req, err := c.jsonRequest(method, path, payload)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, req, &out)
	return out, err
}
