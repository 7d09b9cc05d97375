package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factcompanion/internal/model"
)

// suspectRatio is the share of alarmist titles above which a creator is flagged.
// The comparison is strict: exactly half does not flag.
const suspectRatio = 0.5

// defaultAlarmistMarkers are matched case-insensitively as substrings of titles
var defaultAlarmistMarkers = []string{
	"end of", "collapse", "catastrophe", "disaster", "warning",
	"urgent", "emergency", "crisis", "apocalypse", "doom",
	"they don't want you to know", "wake up", "truth about",
	"exposed", "shocking", "you won't believe", "must watch",
	"before it's too late", "happening now", "breaking",
}

// CreatorClassifier scores a creator's recent titles for alarmist language
type CreatorClassifier struct {
	markers []string
}

// NewCreatorClassifier creates a classifier with the built-in marker list
func NewCreatorClassifier() *CreatorClassifier {
	return &CreatorClassifier{markers: defaultAlarmistMarkers}
}

// Analyze flags a creator when more than half of the given titles use alarmist
// language. Every title counts the same regardless of age or popularity.
func (c *CreatorClassifier) Analyze(titles []string) model.CreatorAnalysis {
	if len(titles) == 0 {
		return model.CreatorAnalysis{}
	}

	matches := 0
	for _, title := range titles {
		if c.IsAlarmist(title) {
			matches++
		}
	}

	ratio := float64(matches) / float64(len(titles))
	if ratio > suspectRatio {
		return model.CreatorAnalysis{
			IsSuspect: true,
			Reason:    fmt.Sprintf("%d of %d recent videos use alarmist language", matches, len(titles)),
		}
	}

	return model.CreatorAnalysis{}
}

// IsAlarmist reports whether a single title contains any marker
func (c *CreatorClassifier) IsAlarmist(title string) bool {
	lower := normalizeTitle(title)
	for _, marker := range c.markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// AnalyzeCreator runs the default classifier
func AnalyzeCreator(titles []string) model.CreatorAnalysis {
	return NewCreatorClassifier().Analyze(titles)
}

// normalizeTitle lowercases and folds typographic apostrophes so that
// "Don’t" matches "don't"
func normalizeTitle(title string) string {
	lower := strings.ToLower(title)
	return strings.NewReplacer("’", "'", "‘", "'").Replace(lower)
}
