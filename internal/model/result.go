package model

// Confidence labels how strongly the explanation is backed by evidence
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"   // A formal fact-check exists
	ConfidenceMedium Confidence = "medium" // Only trusted news coverage exists
	ConfidenceLow    Confidence = "low"    // Nothing found
)

// CreatorAnalysis is the alarmist-content signal for an uploader
type CreatorAnalysis struct {
	IsSuspect bool   `json:"is_suspect"`
	Reason    string `json:"reason,omitempty"` // Empty when not suspect
}

// ResearchResult is the complete output of one research run.
//
// It deliberately carries nothing about who asked: the messaging layer must not
// add sender identifiers here, and the query log stores exactly this shape.
type ResearchResult struct {
	Claim            string     `json:"claim"` // Video title
	Confidence       Confidence `json:"confidence"`
	Explanation      string     `json:"explanation"`
	Sources          []string   `json:"sources"` // Fact-check URLs first, then search URLs
	Platform         Platform   `json:"platform"`
	ChannelIsSuspect bool       `json:"channel_is_suspect"`

	// Audit fields kept for anonymized logging
	VideoURL           string `json:"video_url"`
	VideoTitle         string `json:"video_title"`
	VideoCreator       string `json:"video_creator"`
	ClaimExtracted     string `json:"claim_extracted"`
	FactChecksFound    int    `json:"fact_checks_found"`
	SearchResultsFound int    `json:"search_results_found"`
}

// CollectSources returns the non-empty evidence URLs, fact-checks first
func CollectSources(factChecks []FactCheckResult, searchResults []SearchResult) []string {
	sources := make([]string, 0, len(factChecks)+len(searchResults))
	for _, fc := range factChecks {
		if fc.URL != "" {
			sources = append(sources, fc.URL)
		}
	}
	for _, sr := range searchResults {
		if sr.URL != "" {
			sources = append(sources, sr.URL)
		}
	}
	return sources
}
