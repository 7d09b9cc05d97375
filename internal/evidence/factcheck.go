// Package evidence queries external fact-check and news-search providers.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/factcompanion/internal/fetch"
	"github.com/ppiankov/factcompanion/internal/model"
)

// queryChars bounds the claim text sent to the fact-check API
const queryChars = 200

// FactChecker returns published fact-check verdicts for a claim
type FactChecker interface {
	Check(ctx context.Context, claim string) ([]model.FactCheckResult, error)
}

// FactCheckClient queries the Google Fact Check Tools claims:search API
type FactCheckClient struct {
	client   *fetch.Client
	apiKey   string
	endpoint string
	language string
	timeout  time.Duration
}

// NewFactCheckClient creates a client from the evidence config
func NewFactCheckClient(cfg model.EvidenceConfig, client *fetch.Client) *FactCheckClient {
	lang := cfg.LanguageCode
	if lang == "" {
		lang = "en"
	}
	return &FactCheckClient{
		client:   client,
		apiKey:   cfg.FactCheckAPIKey,
		endpoint: cfg.FactCheckURL,
		language: lang,
		timeout:  cfg.Timeout,
	}
}

type claimSearchResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Check returns at most model.MaxFactChecks reviews in provider order.
// Each review of each matched claim is one result.
func (c *FactCheckClient) Check(ctx context.Context, claim string) ([]model.FactCheckResult, error) {
	if c.apiKey == "" {
		return []model.FactCheckResult{}, &ProviderError{Provider: "factcheck", Op: "check", Err: ErrNoAPIKey}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("query", model.Truncate(claim, queryChars))
	params.Set("languageCode", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return []model.FactCheckResult{}, &ProviderError{Provider: "factcheck", Op: "request", Err: withoutSecret(err, c.apiKey, c.endpoint)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return []model.FactCheckResult{}, &ProviderError{Provider: "factcheck", Op: "call", Err: withoutSecret(err, c.apiKey, c.endpoint)}
	}

	var body claimSearchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return []model.FactCheckResult{}, &ProviderError{Provider: "factcheck", Op: "decode", Err: fmt.Errorf("decode response: %w", err)}
	}

	results := make([]model.FactCheckResult, 0, model.MaxFactChecks)
	for _, cl := range body.Claims {
		for _, review := range cl.ClaimReview {
			if len(results) == model.MaxFactChecks {
				return results, nil
			}
			results = append(results, model.FactCheckResult{
				Claim:     cl.Text,
				Claimant:  cl.Claimant,
				Rating:    orUnknown(review.TextualRating),
				Publisher: orUnknown(review.Publisher.Name),
				URL:       review.URL,
			})
		}
	}
	return results, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
