package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factcompanion/internal/model"
)

// fallbackSearchLines is how many search hits the template lists
const fallbackSearchLines = 2

// FallbackResponse builds the explanation without a provider. It never fails.
func FallbackResponse(video *model.VideoInfo, factChecks []model.FactCheckResult, searchResults []model.SearchResult) string {
	title := ""
	if video != nil {
		title = video.Title
	}

	parts := []string{`I looked into the video: "` + title + `"`}

	switch {
	case len(factChecks) > 0:
		fc := factChecks[0]
		parts = append(parts,
			fmt.Sprintf("\n\n%s has rated this claim as: %s", fc.Publisher, fc.Rating),
			"Source: "+fc.URL,
		)
	case len(searchResults) > 0:
		parts = append(parts, "\n\nI couldn't find a formal fact-check, but here's what trusted sources say:")
		for i, sr := range searchResults {
			if i == fallbackSearchLines {
				break
			}
			parts = append(parts, fmt.Sprintf("- %s (%s)", sr.Title, sr.URL))
		}
	default:
		parts = append(parts,
			"\n\nI couldn't find any coverage of this from trusted news sources.",
			"That doesn't mean it's false, but it means major outlets haven't reported on it.",
			"I'd wait for more information before worrying.",
		)
	}

	return strings.Join(parts, "\n")
}
