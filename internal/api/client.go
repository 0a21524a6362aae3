package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxErrorBody = 64 << 10

// TokenSource supplies the bearer credential for outgoing requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout of zero leaves requests unbounded; only the caller's context
	// can stop them.
	Timeout time.Duration
	Tokens  TokenSource
	Logger  *slog.Logger
}

type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", raw)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{base: base, http: hc, log: logger, tokens: opts.Tokens}, nil
}

// SetTokenSource wires the session after construction; the session service
// itself needs the client to log in.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) resolve(p string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + p
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// send performs the request and turns every failure into *Error. On success
// the caller owns the response body.
func (c *Client) send(ctx context.Context, method, p string, query url.Values, body io.Reader, contentType, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(p, query), body)
	if err != nil {
		return nil, &Error{Method: method, Path: p, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "method", method, "path", p, "rid", reqID, "error", err)
		return nil, &Error{Method: method, Path: p, Err: err}
	}
	c.log.Debug("api request", "method", method, "path", p, "rid", reqID, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{Method: method, Path: p, StatusCode: resp.StatusCode, Message: extractMessage(b)}
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, p string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Method: method, Path: p, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	resp, err := c.send(ctx, method, p, query, body, contentType, "application/json")
	if err != nil {
		return err
	}
	return decodeBody(resp, method, p, out)
}

func decodeBody(resp *http.Response, method, p string, out any) error {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Method: method, Path: p, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &Error{Method: method, Path: p, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// getBytes fetches a binary endpoint without any JSON decoding.
func (c *Client) getBytes(ctx context.Context, p string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, p, nil, nil, "", "*/*")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: http.MethodGet, Path: p, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	return b, nil
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
