// Package pipeline runs one research request from a shared link to a
// confidence-labeled explanation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/factcompanion/internal/cache"
	"github.com/ppiankov/factcompanion/internal/evidence"
	"github.com/ppiankov/factcompanion/internal/extract"
	"github.com/ppiankov/factcompanion/internal/fetch"
	"github.com/ppiankov/factcompanion/internal/llm"
	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/score"
	"github.com/ppiankov/factcompanion/internal/video"
	"github.com/ppiankov/factcompanion/internal/worker"
)

// Extractor fetches video metadata
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*model.VideoInfo, error)
}

// HistoryFetcher lists a creator's recent titles; it never fails
type HistoryFetcher interface {
	Fetch(ctx context.Context, creatorID string, platform model.Platform) []string
}

// Deps are the collaborators of a Pipeline
type Deps struct {
	Extractor   Extractor
	History     HistoryFetcher
	FactChecker evidence.FactChecker
	Searcher    evidence.Searcher
	Explainer   *llm.Explainer
}

// Pipeline orchestrates the research process
type Pipeline struct {
	extractor Extractor
	history   HistoryFetcher
	factCheck evidence.FactChecker
	search    evidence.Searcher
	explainer *llm.Explainer
}

// New builds a pipeline and its collaborators from cfg. Provider
// misconfiguration is reported here, before any request is served.
func New(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.SelectProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		slog.Debug("pipeline: explanation provider selected",
			slog.String("kind", string(provider.Kind())),
			slog.String("model", provider.Model()))
	} else {
		slog.Debug("pipeline: no explanation provider, using fallback text")
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	client := fetch.NewClient(cfg.HTTP, limiter)
	endpoints := video.DefaultEndpoints()

	return NewWithDeps(Deps{
		Extractor:   video.NewExtractor(client, endpoints),
		History:     video.NewHistoryFetcher(client, endpoints.YouTubeFeed),
		FactChecker: evidence.NewCachedFactChecker(evidence.NewFactCheckClient(cfg.Evidence, client), c, cfg.Cache.TTL),
		Searcher:    evidence.NewCachedSearcher(evidence.NewSearchClient(cfg.Evidence, client), c, cfg.Cache.TTL),
		Explainer:   llm.NewExplainer(provider),
	}), nil
}

// NewWithDeps creates a pipeline from explicit collaborators
func NewWithDeps(d Deps) *Pipeline {
	explainer := d.Explainer
	if explainer == nil {
		explainer = llm.NewExplainer(nil)
	}
	return &Pipeline{
		extractor: d.Extractor,
		history:   d.History,
		factCheck: d.FactChecker,
		search:    d.Searcher,
		explainer: explainer,
	}
}

// Provider returns the explanation provider, nil when only the fallback
// text is used
func (p *Pipeline) Provider() llm.Provider {
	return p.explainer.Provider()
}

// Research runs the full pipeline for one link. Only metadata extraction
// failures are returned, as *video.ExtractionError; every later step degrades.
func (p *Pipeline) Research(ctx context.Context, rawURL string) (*model.ResearchResult, error) {
	start := time.Now()
	logStage(StageStart, slog.String("url", rawURL))

	info, err := p.extractor.Extract(ctx, rawURL)
	if err != nil {
		var extErr *video.ExtractionError
		if !errors.As(err, &extErr) {
			err = &video.ExtractionError{URL: rawURL, Err: err}
		}
		return nil, err
	}
	logStage(StageMetadataExtracted,
		slog.String("platform", string(info.Platform)),
		slog.Bool("transcript", info.HasTranscript()))

	var (
		titles  []string
		creator model.CreatorAnalysis
		claim   string
	)

	// Branches write disjoint variables and never return an error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if p.history != nil {
			titles = p.history.Fetch(gctx, info.CreatorID, info.Platform)
		}
		creator = score.AnalyzeCreator(titles)
		return nil
	})
	g.Go(func() error {
		claim = extract.ExtractClaim(info)
		return nil
	})
	_ = g.Wait()
	logStage(StageCreatorProfiled, slog.Int("titles", len(titles)), slog.Bool("suspect", creator.IsSuspect))
	logStage(StageClaimBuilt, slog.Int("claim_chars", len([]rune(claim))))

	factChecks := p.lookupFactChecks(ctx, claim)
	logStage(StageFactChecksQueried, slog.Int("found", len(factChecks)))

	searchResults := []model.SearchResult{}
	if len(factChecks) == 0 {
		searchResults = p.lookupSearch(ctx, claim)
		logStage(StageSearchQueried, slog.Int("found", len(searchResults)))
	}

	confidence := score.ResolveConfidence(factChecks, searchResults)
	logStage(StageConfidenceResolved, slog.String("confidence", string(confidence)))

	explanation := p.explainer.Explain(ctx, llm.ExplainRequest{
		Video:         info,
		Creator:       creator,
		CreatorTitles: titles,
		FactChecks:    factChecks,
		SearchResults: searchResults,
	})
	logStage(StageExplanationGenerated, slog.Bool("generated", explanation.Generated))

	result := &model.ResearchResult{
		Claim:              info.Title,
		Confidence:         confidence,
		Explanation:        explanation.Text,
		Sources:            model.CollectSources(factChecks, searchResults),
		Platform:           info.Platform,
		ChannelIsSuspect:   creator.IsSuspect,
		VideoURL:           info.URL,
		VideoTitle:         info.Title,
		VideoCreator:       info.Creator,
		ClaimExtracted:     claim,
		FactChecksFound:    len(factChecks),
		SearchResultsFound: len(searchResults),
	}
	logStage(StageDone, slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (p *Pipeline) lookupFactChecks(ctx context.Context, claim string) []model.FactCheckResult {
	if p.factCheck == nil {
		return []model.FactCheckResult{}
	}
	results, err := p.factCheck.Check(ctx, claim)
	if err != nil {
		logProviderError("factcheck", err)
		return []model.FactCheckResult{}
	}
	if results == nil {
		return []model.FactCheckResult{}
	}
	return results
}

func (p *Pipeline) lookupSearch(ctx context.Context, claim string) []model.SearchResult {
	if p.search == nil {
		return []model.SearchResult{}
	}
	results, err := p.search.Search(ctx, claim)
	if err != nil {
		logProviderError("search", err)
		return []model.SearchResult{}
	}
	if results == nil {
		return []model.SearchResult{}
	}
	return results
}

func logProviderError(provider string, err error) {
	if errors.Is(err, evidence.ErrNoAPIKey) {
		slog.Debug(provider+": skipped, no API key")
		return
	}
	slog.Warn(provider+": lookup failed", slog.Any("err", err))
}
