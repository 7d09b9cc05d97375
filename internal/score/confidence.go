package score

import "github.com/ppiankov/factcompanion/internal/model"

// ResolveConfidence maps the evidence that was found to a confidence tier.
// Only the presence of evidence matters; nothing else feeds into it.
func ResolveConfidence(factChecks []model.FactCheckResult, searchResults []model.SearchResult) model.Confidence {
	switch {
	case len(factChecks) > 0:
		return model.ConfidenceHigh
	case len(searchResults) > 0:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
