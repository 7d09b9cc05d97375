package llm

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ppiankov/factcompanion/internal/model"
)

// ExplainRequest is everything the explanation may draw on
type ExplainRequest struct {
	Video         *model.VideoInfo
	Creator       model.CreatorAnalysis
	CreatorTitles []string
	FactChecks    []model.FactCheckResult
	SearchResults []model.SearchResult
}

// Explanation is the text shown to the reader and where it came from
type Explanation struct {
	Text      string
	Generated bool // false when the fallback template was used
	Kind      Kind
	Model     string
}

// Explainer produces explanations with a provider when one is configured
type Explainer struct {
	provider Provider
}

// NewExplainer creates an explainer; a nil provider always uses the fallback
func NewExplainer(provider Provider) *Explainer {
	return &Explainer{provider: provider}
}

// Provider returns the configured provider, or nil
func (e *Explainer) Provider() Provider {
	return e.provider
}

// Explain never fails. Any provider error or empty completion yields the
// fallback, and provider error text never reaches the explanation.
func (e *Explainer) Explain(ctx context.Context, req ExplainRequest) Explanation {
	fallback := func() Explanation {
		return Explanation{Text: FallbackResponse(req.Video, req.FactChecks, req.SearchResults)}
	}

	if e.provider == nil || req.Video == nil {
		return fallback()
	}

	text, err := e.provider.Complete(ctx, SystemPrompt, BuildPrompt(req))
	if err != nil {
		slog.Warn("llm: completion failed, using fallback",
			slog.String("kind", string(e.provider.Kind())),
			slog.String("model", e.provider.Model()),
			slog.Any("err", err))
		return fallback()
	}
	if strings.TrimSpace(text) == "" {
		slog.Warn("llm: empty completion, using fallback", slog.String("kind", string(e.provider.Kind())))
		return fallback()
	}

	if leaked := uncitedURLs(text, req); len(leaked) > 0 {
		slog.Warn("llm: explanation cites URLs outside the evidence",
			slog.String("kind", string(e.provider.Kind())),
			slog.Any("urls", leaked))
	}

	return Explanation{
		Text:      text,
		Generated: true,
		Kind:      e.provider.Kind(),
		Model:     e.provider.Model(),
	}
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]>"]+`)

// uncitedURLs returns URLs in text that are not among the evidence links
func uncitedURLs(text string, req ExplainRequest) []string {
	allowed := make(map[string]bool)
	for _, u := range model.CollectSources(req.FactChecks, req.SearchResults) {
		allowed[strings.TrimRight(u, "/")] = true
	}
	if req.Video != nil {
		allowed[strings.TrimRight(req.Video.URL, "/")] = true
	}

	var leaked []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(strings.TrimRight(u, ".,;:!?'"), "/")
		if !allowed[u] {
			leaked = append(leaked, u)
		}
	}
	return leaked
}
