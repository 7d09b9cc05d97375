package model

// Evidence list caps
const (
	MaxFactChecks    = 5
	MaxSearchResults = 5
)

// FactCheckResult is one published review of a claim from a fact-check database.
// A single claim with several reviews yields several results.
type FactCheckResult struct {
	Claim     string `json:"claim"`              // Claim text as recorded by the reviewer
	Claimant  string `json:"claimant,omitempty"` // Who made the claim, if recorded
	Rating    string `json:"rating"`             // Textual rating, e.g. "False"
	Publisher string `json:"publisher"`          // Fact-checking organisation
	URL       string `json:"url"`                // Review article
}

// SearchResult is one hit from the trusted-domain news search
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}
