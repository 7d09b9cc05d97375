// Package fetch is the shared outbound HTTP client: bounded bodies, proxy
// settings, per-host rate limiting and an optional robots.txt gate.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ppiankov/factcompanion/internal/model"
)

// ErrDisallowed is returned when robots.txt forbids fetching a page
var ErrDisallowed = errors.New("disallowed by robots.txt")

// RateLimiter paces requests per host
type RateLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// StatusError reports a non-2xx response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// Client performs outbound requests for every component
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    RateLimiter
	robots     *RobotsChecker
}

// NewClient creates a client from the HTTP config. limiter may be nil.
func NewClient(cfg model.HTTPConfig, limiter RateLimiter) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 6 << 20
	}

	c := &Client{
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		limiter:    limiter,
	}
	if cfg.RespectRobots {
		c.robots = NewRobotsChecker(httpClient, cfg.UserAgent)
	}
	return c
}

// Response is a fully read, size-bounded response
type Response struct {
	Body        []byte
	StatusCode  int
	ContentType string
	FinalURL    string
}

// Do sends req and reads at most maxBytes of the body. Non-2xx responses
// return a *StatusError.
func (c *Client) Do(req *http.Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context(), req.URL.String()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	if req.Header.Get("User-Agent") == "" && c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// Page fetches an HTML page with browser-like headers, honouring robots.txt
// when enabled.
func (c *Client) Page(ctx context.Context, rawURL string) (*Response, error) {
	if c.robots != nil && !c.robots.Allowed(ctx, rawURL) {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	return c.Do(req)
}

// proxyFunc uses explicit proxies when configured, else the environment
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
