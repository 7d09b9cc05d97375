package extract

import (
	"strings"

	"github.com/ppiankov/factcompanion/internal/model"
)

// Claim text budget
const (
	MaxClaimChars         = 500
	transcriptClaimWords  = 200
	descriptionClaimChars = 200
	hashtagClaimCount     = 5
)

// ExtractClaim reduces video metadata to the single claim string that evidence
// providers are queried with.
//
// Parts, in order: the title; the opening words of the transcript, or the
// opening of the description when there is no transcript (never both); the
// first few hashtags. The joined text is cut to MaxClaimChars runes.
func ExtractClaim(v *model.VideoInfo) string {
	if v == nil {
		return ""
	}

	parts := []string{v.Title}

	if v.Transcript != "" {
		// The opening of a transcript usually states the core claim
		words := strings.Fields(v.Transcript)
		if len(words) > transcriptClaimWords {
			words = words[:transcriptClaimWords]
		}
		parts = append(parts, strings.Join(words, " "))
	} else if v.Description != "" {
		parts = append(parts, model.Truncate(v.Description, descriptionClaimChars))
	}

	if len(v.Hashtags) > 0 {
		tags := v.Hashtags
		if len(tags) > hashtagClaimCount {
			tags = tags[:hashtagClaimCount]
		}
		parts = append(parts, strings.Join(tags, " "))
	}

	return model.Truncate(strings.Join(parts, " "), MaxClaimChars)
}
