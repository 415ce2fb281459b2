// Package api is the HTTP client for the productivity backend: users,
// todos and schedules.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://moipzy.shop/app2/api"

const maxBodyBytes = 4 << 20

// TokenStrategy selects where a login response carries the issued token.
type TokenStrategy string

const (
	TokenFromBody   TokenStrategy = "body"
	TokenFromHeader TokenStrategy = "header"
)

// ParseTokenStrategy validates a configured strategy name.
func ParseTokenStrategy(s string) (TokenStrategy, error) {
	switch TokenStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", TokenFromBody:
		return TokenFromBody, nil
	case TokenFromHeader:
		return TokenFromHeader, nil
	default:
		return "", fmt.Errorf("unknown token source %q (want body or header)", s)
	}
}

// Client talks to the backend. Authenticated calls take their bearer token
// from the configured oauth2.TokenSource on every request.
type Client struct {
	baseURL  string
	base     *http.Client
	authed   *http.Client
	tokens   oauth2.TokenSource
	strategy TokenStrategy
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.base = hc }
}

// WithTokenSource sets where authenticated calls get their token.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTokenStrategy sets how Login extracts the issued token.
func WithTokenStrategy(s TokenStrategy) Option {
	return func(c *Client) { c.strategy = s }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.base.Timeout = d
		}
	}
}

// New returns a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		base:     &http.Client{Timeout: 15 * time.Second},
		strategy: TokenFromBody,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = noSession{}
	}
	c.authed = c.bearerClient(c.tokens)
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) bearerClient(ts oauth2.TokenSource) *http.Client {
	return &http.Client{
		Timeout:   c.base.Timeout,
		Transport: &oauth2.Transport{Source: ts, Base: c.base.Transport},
	}
}

type noSession struct{}

func (noSession) Token() (*oauth2.Token, error) {
	return nil, ErrUnauthenticated
}

// BearerToken wraps a raw access token for oauth2 transports.
func BearerToken(token string) *oauth2.Token {
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in any) (*response, error) {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		if errors.Is(err, ErrUnauthenticated) {
			return nil, &Error{Kind: KindAuth, Message: "not logged in", Err: err}
		}
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindStatus
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = KindAuth
		}
		return nil, &Error{Kind: kind, Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// errorMessage pulls a human readable message out of an error body.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, m := range []string{payload.Message, payload.Error, payload.Detail} {
			if m = strings.TrimSpace(m); m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}

// asAuthFailure reports non-success login/signup statuses as auth errors.
func asAuthFailure(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindStatus {
		return &Error{Kind: KindAuth, Status: e.Status, Message: e.Message}
	}
	return err
}
