package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/factcompanion/internal/fetch"
	"github.com/ppiankov/factcompanion/internal/model"
)

// Searcher returns news coverage of a claim from trusted publishers
type Searcher interface {
	Search(ctx context.Context, claim string) ([]model.SearchResult, error)
}

// SearchClient queries the Serper web-search API restricted to trusted sites
type SearchClient struct {
	client   *fetch.Client
	apiKey   string
	endpoint string
	trusted  *TrustedDomains
	timeout  time.Duration
}

// NewSearchClient creates a client from the evidence config
func NewSearchClient(cfg model.EvidenceConfig, client *fetch.Client) *SearchClient {
	domains := cfg.TrustedDomains
	if len(domains) == 0 {
		domains = model.DefaultTrustedDomains
	}
	return &SearchClient{
		client:   client,
		apiKey:   cfg.SearchAPIKey,
		endpoint: cfg.SearchURL,
		trusted:  NewTrustedDomains(domains),
		timeout:  cfg.Timeout,
	}
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic"`
}

// Query builds the site-restricted query for claim
func (c *SearchClient) Query(claim string) string {
	filter := c.trusted.SiteFilter()
	if filter == "" {
		return claim
	}
	return strings.TrimSpace(claim + " " + filter)
}

// Search returns at most model.MaxSearchResults organic results. Links outside
// the allow-list are dropped.
func (c *SearchClient) Search(ctx context.Context, claim string) ([]model.SearchResult, error) {
	if c.apiKey == "" {
		return []model.SearchResult{}, &ProviderError{Provider: "search", Op: "search", Err: ErrNoAPIKey}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(searchRequest{Q: c.Query(claim), Num: model.MaxSearchResults})
	if err != nil {
		return []model.SearchResult{}, &ProviderError{Provider: "search", Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return []model.SearchResult{}, &ProviderError{Provider: "search", Op: "request", Err: err}
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return []model.SearchResult{}, &ProviderError{Provider: "search", Op: "call", Err: err}
	}

	var body searchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return []model.SearchResult{}, &ProviderError{Provider: "search", Op: "decode", Err: fmt.Errorf("decode response: %w", err)}
	}

	results := make([]model.SearchResult, 0, model.MaxSearchResults)
	for _, item := range body.Organic {
		if len(results) == model.MaxSearchResults {
			break
		}
		if item.Link != "" && !c.trusted.Contains(item.Link) {
			slog.Debug("search: dropping untrusted result", slog.String("url", item.Link))
			continue
		}
		results = append(results, model.SearchResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
		})
	}
	return results, nil
}
