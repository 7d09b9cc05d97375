package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factcompanion/internal/model"
)

// Prompt excerpt limits
const (
	promptDescriptionChars = 800
	promptTranscriptChars  = 3000
	promptSnippetChars     = 100
	promptRecentTitles     = 5
)

// SystemPrompt frames the model as a calm helper replying to a worried
// relative
const SystemPrompt = `You are a fact-checking assistant helping a family member respond to their grandmother who has seen a concerning video.

Your task:
1. ANALYZE the video transcript for specific factual claims
2. IDENTIFY which claims are verifiable and which are speculation/opinion
3. CHECK each major claim against the fact-check results and news sources provided
4. EXPLAIN what's accurate, what's misleading, and what's false

For each major claim you find, assess:
- Is this claim verifiable or just opinion/speculation?
- Does evidence support or contradict it?
- Is it missing important context?
- Is it exaggerated or sensationalized?

Then write a response for grandmother that:
- ACKNOWLEDGES her concern (never dismiss or mock)
- EXPLAINS specifically what the video got right or wrong
- CITES sources when available
- Is CALMING and respectful
- Is BRIEF (150-200 words max)

If the video contains multiple false claims, focus on the 2-3 most important ones.
If the channel has a pattern of doom content, mention it gently.
If you're uncertain about something, say so honestly.

Format: Write as if the grandson will copy-paste this directly to grandmother. Simple language, no jargon.`

// BuildPrompt renders the user prompt for one research run
func BuildPrompt(req ExplainRequest) string {
	v := req.Video
	var b strings.Builder

	fmt.Fprintf(&b, "VIDEO PLATFORM: %s\n", strings.ToUpper(string(v.Platform)))
	fmt.Fprintf(&b, "VIDEO TITLE: %s\n", v.Title)
	fmt.Fprintf(&b, "CREATOR: %s\n", v.Creator)
	fmt.Fprintf(&b, "VIDEO DESCRIPTION: %s\n\n", model.Truncate(v.Description, promptDescriptionChars))

	if v.HasTranscript() {
		fmt.Fprintf(&b, "VIDEO TRANSCRIPT (analyze this for factual claims):\n\"\"\"\n%s\n\"\"\"\n\n", model.Truncate(v.Transcript, promptTranscriptChars))
	} else {
		b.WriteString("TRANSCRIPT: Not available - analyze based on title and description only.\n\n")
	}

	if channel := channelSection(req.Creator, req.CreatorTitles); channel != "" {
		b.WriteString(channel)
		b.WriteString("\n\n")
	}

	b.WriteString("EXISTING FACT-CHECK RESULTS (from fact-check databases):\n")
	if len(req.FactChecks) == 0 {
		b.WriteString("No formal fact-checks found for this claim.\n")
	}
	for _, fc := range req.FactChecks {
		fmt.Fprintf(&b, "- %s: rated '%s' - %s\n", fc.Publisher, fc.Rating, fc.URL)
	}

	b.WriteString("\nTRUSTED NEWS COVERAGE:\n")
	if len(req.SearchResults) == 0 {
		b.WriteString("No coverage found on trusted news sites.\n")
	}
	for _, sr := range req.SearchResults {
		fmt.Fprintf(&b, "- %s: %s... (%s)\n", sr.Title, model.Truncate(sr.Snippet, promptSnippetChars), sr.URL)
	}

	b.WriteString(`
---
INSTRUCTIONS:
1. First, identify the 2-3 main claims made in the video (from transcript/title/description)
2. Then, analyze each claim for accuracy
3. Finally, write a brief, gentle response for grandmother explaining what's true/false/misleading

Generate the response now:
`)
	return b.String()
}

func channelSection(creator model.CreatorAnalysis, titles []string) string {
	var lines []string
	if creator.IsSuspect {
		lines = append(lines, "CHANNEL PATTERN WARNING: "+creator.Reason)
	}
	if len(titles) > 0 {
		if len(titles) > promptRecentTitles {
			titles = titles[:promptRecentTitles]
		}
		quoted := make([]string, len(titles))
		for i, t := range titles {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		lines = append(lines, "Recent videos from this creator: "+strings.Join(quoted, ", "))
	}
	return strings.Join(lines, "\n")
}
