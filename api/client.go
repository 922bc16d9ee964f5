package api

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

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenSource holds the bearer token the client authenticates with.
type TokenSource interface {
	// Token returns the current token, or "" when there is none.
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

// Client talks to the task-tracker REST API.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	log       *zap.Logger
	onExpired func()
	timeout   time.Duration

	refreshGroup singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout on the client's own copy of the
// http.Client, leaving one passed with WithHTTPClient untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithSessionExpired registers a hook called after a failed token refresh.
func WithSessionExpired(f func()) Option {
	return func(c *Client) { c.onExpired = f }
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any

	// anonymous requests never trigger a token refresh
	anonymous bool
}

// do sends req and decodes a 2xx answer into out. A 401 on an authenticated
// request refreshes the token once and retries the request once.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	resp, err := c.send(ctx, req, payload, token)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && !req.anonymous && token != "" {
		newToken, refreshErr := c.freshToken(ctx, token)
		if refreshErr != nil {
			c.log.Warn("token refresh failed", zap.String("path", req.path), zap.Error(refreshErr))
			if err := c.tokens.Clear(); err != nil {
				c.log.Warn("failed to clear token", zap.Error(err))
			}
			if c.onExpired != nil {
				c.onExpired()
			}
			return newError(resp.status, resp.body)
		}

		resp, err = c.send(ctx, req, payload, newToken)
		if err != nil {
			return err
		}
	}

	if resp.status < 200 || resp.status >= 300 {
		return newError(resp.status, resp.body)
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.method, req.path, err)
	}
	return nil
}

type response struct {
	status int
	body   []byte
}

func (c *Client) send(ctx context.Context, req request, payload []byte, token string) (*response, error) {
	u := c.baseURL + "/" + strings.TrimLeft(req.path, "/")
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", req.method, req.path, err)
	}

	c.log.Debug("api request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", httpResp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("latency", time.Since(start)),
	)

	return &response{status: httpResp.StatusCode, body: data}, nil
}

// freshToken returns a token newer than stale, refreshing only when another
// request has not already done so.
func (c *Client) freshToken(ctx context.Context, stale string) (string, error) {
	current, err := c.tokens.Token()
	if err == nil && current != "" && current != stale {
		return current, nil
	}
	return c.refresh(ctx, stale)
}

// refresh exchanges the current token for a new one. Concurrent callers
// share a single refresh call.
func (c *Client) refresh(ctx context.Context, token string) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		resp, err := c.send(ctx, request{method: http.MethodPost, path: "/auth/refresh", body: struct{}{}}, []byte("{}"), token)
		if err != nil {
			return "", err
		}
		if resp.status < 200 || resp.status >= 300 {
			return "", newError(resp.status, resp.body)
		}

		var out struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal(resp.body, &out); err != nil {
			return "", fmt.Errorf("failed to decode refresh response: %w", err)
		}
		if out.AccessToken == "" {
			return "", fmt.Errorf("refresh response carries no access token")
		}
		if err := c.tokens.SetToken(out.AccessToken); err != nil {
			return "", fmt.Errorf("failed to store refreshed token: %w", err)
		}
		return out.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
