package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factcompanion/internal/evidence"
	"github.com/ppiankov/factcompanion/internal/fetch"
	"github.com/ppiankov/factcompanion/internal/llm"
	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/video"
)

// bankWatchPage takes the server URL for the caption track
const bankWatchPage = `<html><body><script>var ytInitialPlayerResponse = {"videoDetails":{"videoId":"bank1","title":"Banks will all collapse Monday!","author":"Doom Daily","channelId":"UCdoom","shortDescription":"Get your money out now"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/timedtext?v=bank1","languageCode":"en"}]}}};</script></body></html>`

const bankTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript><text start="0" dur="2">Banks will all collapse Monday!</text><text start="2" dur="3">Withdraw everything before the weekend.</text></transcript>`

const doomFeed = `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom">
<entry><title>URGENT warning for savers</title></entry>
<entry><title>The collapse is coming</title></entry>
<entry><title>My garden</title></entry>
</feed>`

// providerReplies are the canned evidence responses
type providerReplies struct {
	factCheckBody   string
	factCheckStatus int
	searchBody      string
}

// fakeWorld serves the video platform and both evidence providers
type fakeWorld struct {
	server         *httptest.Server
	replies        providerReplies
	factCheckCalls atomic.Int32
	searchCalls    atomic.Int32
	factCheckQuery atomic.Value // last query sent to the fact-check provider
}

func newFakeWorld(t *testing.T, replies providerReplies) *fakeWorld {
	t.Helper()
	if replies.factCheckBody == "" {
		replies.factCheckBody = `{}`
	}
	if replies.factCheckStatus == 0 {
		replies.factCheckStatus = http.StatusOK
	}
	if replies.searchBody == "" {
		replies.searchBody = `{}`
	}
	w := &fakeWorld{replies: replies}
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(rw http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(rw, bankWatchPage, w.server.URL)
	})
	mux.HandleFunc("/timedtext", func(rw http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(rw, bankTimedText)
	})
	mux.HandleFunc("/feeds/videos.xml", func(rw http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(rw, doomFeed)
	})
	mux.HandleFunc("/claims:search", func(rw http.ResponseWriter, r *http.Request) {
		w.factCheckCalls.Add(1)
		w.factCheckQuery.Store(r.URL.Query().Get("query"))
		rw.WriteHeader(w.replies.factCheckStatus)
		_, _ = fmt.Fprint(rw, w.replies.factCheckBody)
	})
	mux.HandleFunc("/search", func(rw http.ResponseWriter, r *http.Request) {
		w.searchCalls.Add(1)
		_, _ = fmt.Fprint(rw, w.replies.searchBody)
	})
	w.server = httptest.NewServer(mux)
	t.Cleanup(w.server.Close)
	return w
}

func (w *fakeWorld) pipeline(provider llm.Provider) *Pipeline {
	client := fetch.NewClient(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "factcompanion-test"}, nil)

	cfg := model.DefaultConfig().Evidence
	cfg.FactCheckAPIKey = "fc-key"
	cfg.FactCheckURL = w.server.URL + "/claims:search"
	cfg.SearchAPIKey = "search-key"
	cfg.SearchURL = w.server.URL + "/search"

	endpoints := video.Endpoints{
		YouTubeWatch: w.server.URL + "/watch?v=",
		YouTubeFeed:  w.server.URL + "/feeds/videos.xml",
	}

	return NewWithDeps(Deps{
		Extractor:   video.NewExtractor(client, endpoints),
		History:     video.NewHistoryFetcher(client, endpoints.YouTubeFeed),
		FactChecker: evidence.NewFactCheckClient(cfg, client),
		Searcher:    evidence.NewSearchClient(cfg, client),
		Explainer:   llm.NewExplainer(provider),
	})
}

const bankURL = "https://www.youtube.com/watch?v=bank1"

func TestResearch_SearchOnlyIsMedium(t *testing.T) {
	world := newFakeWorld(t, providerReplies{
		searchBody: `{"organic":[{"title":"Banks are stable, regulators say","snippet":"No sign of collapse","link":"https://apnews.com/article/banks"}]}`,
	})

	result, err := world.pipeline(nil).Research(context.Background(), bankURL)
	require.NoError(t, err)

	assert.Equal(t, model.ConfidenceMedium, result.Confidence)
	assert.Equal(t, []string{"https://apnews.com/article/banks"}, result.Sources)
	assert.Contains(t, result.Explanation, "I couldn't find a formal fact-check")
	assert.Equal(t, "Banks will all collapse Monday!", result.Claim)
	assert.Equal(t, 0, result.FactChecksFound)
	assert.Equal(t, 1, result.SearchResultsFound)
	assert.True(t, result.ChannelIsSuspect, "2 of 3 titles are alarmist")
	assert.Equal(t, int32(1), world.searchCalls.Load())

	// The claim is built from the transcript, which replaces the description
	assert.Contains(t, result.ClaimExtracted, "Withdraw everything before the weekend.")
	assert.NotContains(t, result.ClaimExtracted, "Get your money out now")
	query, _ := world.factCheckQuery.Load().(string)
	assert.Contains(t, query, "Withdraw everything")
}

func TestResearch_FactCheckIsHighAndSkipsSearch(t *testing.T) {
	world := newFakeWorld(t, providerReplies{
		factCheckBody: `{"claims":[{"text":"Banks collapse Monday","claimReview":[{"publisher":{"name":"FactOrg"},"url":"https://factorg.example/banks","textualRating":"False"}]}]}`,
		searchBody:    `{"organic":[{"title":"x","link":"https://apnews.com/x"}]}`,
	})

	result, err := world.pipeline(nil).Research(context.Background(), bankURL)
	require.NoError(t, err)

	assert.Equal(t, model.ConfidenceHigh, result.Confidence)
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, "https://factorg.example/banks", result.Sources[0])
	assert.Contains(t, result.Explanation, "FactOrg has rated this claim as: False")
	assert.Equal(t, int32(0), world.searchCalls.Load(), "search must not run when fact-checks exist")
}

func TestResearch_NothingFoundIsLow(t *testing.T) {
	world := newFakeWorld(t, providerReplies{})

	result, err := world.pipeline(nil).Research(context.Background(), bankURL)
	require.NoError(t, err)

	assert.Equal(t, model.ConfidenceLow, result.Confidence)
	assert.Empty(t, result.Sources)
	assert.Contains(t, result.Explanation, "I couldn't find any coverage")
}

func TestResearch_ProviderFailuresDegrade(t *testing.T) {
	world := newFakeWorld(t, providerReplies{
		factCheckStatus: http.StatusInternalServerError,
		searchBody:      `not json`,
	})

	result, err := world.pipeline(nil).Research(context.Background(), bankURL)
	require.NoError(t, err)

	assert.Equal(t, model.ConfidenceLow, result.Confidence)
	assert.Equal(t, int32(1), world.factCheckCalls.Load())
	assert.Equal(t, int32(1), world.searchCalls.Load())
}

type failingProvider struct{}

func (failingProvider) Kind() llm.Kind { return llm.KindGateway }
func (failingProvider) Model() string  { return "gpt-4o-mini" }
func (failingProvider) Complete(context.Context, string, string) (string, error) {
	return "", &llm.CompletionError{Kind: llm.KindGateway, Model: "gpt-4o-mini", Err: errors.New("503 upstream")}
}

func TestResearch_GenerationFailureUsesFallback(t *testing.T) {
	world := newFakeWorld(t, providerReplies{})

	result, err := world.pipeline(failingProvider{}).Research(context.Background(), bankURL)
	require.NoError(t, err)

	assert.Contains(t, result.Explanation, `I looked into the video: "Banks will all collapse Monday!"`)
	assert.NotContains(t, result.Explanation, "503")
}

func TestResearch_ExtractionErrorIsFatal(t *testing.T) {
	world := newFakeWorld(t, providerReplies{})

	_, err := world.pipeline(nil).Research(context.Background(), "https://vimeo.com/1")
	var extErr *video.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.ErrorIs(t, err, video.ErrUnsupportedPlatform)
	assert.Equal(t, int32(0), world.factCheckCalls.Load())
}

type plainExtractor struct{ err error }

func (e plainExtractor) Extract(context.Context, string) (*model.VideoInfo, error) {
	return nil, e.err
}

func TestResearch_WrapsUntypedExtractorErrors(t *testing.T) {
	p := NewWithDeps(Deps{Extractor: plainExtractor{err: errors.New("boom")}})

	_, err := p.Research(context.Background(), bankURL)
	var extErr *video.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, bankURL, extErr.URL)
}

func TestResearch_ResultCarriesNoSenderFields(t *testing.T) {
	world := newFakeWorld(t, providerReplies{})

	result, err := world.pipeline(nil).Research(context.Background(), bankURL)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, forbidden := range []string{"from", "sender", "phone", "user"} {
		assert.NotContains(t, fields, forbidden)
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "gateway"
	cfg.Cache.Enabled = false

	_, err := New(cfg)
	var cfgErr *llm.ConfigError
	require.ErrorAs(t, err, &cfgErr)

	cfg.LLM.Provider = "auto"
	p, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, p)
}
