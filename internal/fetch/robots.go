package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker caches robots.txt per host. Hosts whose robots.txt cannot be
// fetched are treated as allowing everything.
type RobotsChecker struct {
	httpClient *http.Client
	agent      string
	userAgent  string

	mu    sync.RWMutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a checker that matches groups by the product token
// of userAgent
func NewRobotsChecker(httpClient *http.Client, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		httpClient: httpClient,
		agent:      productToken(userAgent),
		userAgent:  userAgent,
		cache:      make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}

	data, err := r.robotsFor(ctx, parsed)
	if err != nil {
		return true
	}

	path := parsed.EscapedPath()
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, r.agent)
}

func (r *RobotsChecker) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok := r.cache[u.Host]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.cache[u.Host] = data
	r.mu.Unlock()

	return data, nil
}

// productToken returns "factcompanion" for "Mozilla/5.0 (compatible; factcompanion/0.1; ...)"
// and the first product name otherwise
func productToken(ua string) string {
	if start := strings.Index(ua, "compatible;"); start >= 0 {
		rest := strings.TrimSpace(ua[start+len("compatible;"):])
		if end := strings.IndexAny(rest, ";)"); end > 0 {
			rest = rest[:end]
		}
		return strings.Split(strings.TrimSpace(rest), "/")[0]
	}
	if parts := strings.Fields(ua); len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
