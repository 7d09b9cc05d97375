package server

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResearcher struct {
	mu     sync.Mutex
	urls   []string
	result *model.ResearchResult
	err    error
}

func (f *fakeResearcher) Research(ctx context.Context, rawURL string) (*model.ResearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, rawURL)
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.VideoURL = rawURL
	return &r, nil
}

func (f *fakeResearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func mediumResult() *model.ResearchResult {
	return &model.ResearchResult{
		Claim:              "Banks will all collapse Monday!",
		Confidence:         model.ConfidenceMedium,
		Explanation:        "I couldn't find a formal fact-check, but **Reuters** covered this.",
		Sources:            []string{"https://www.reuters.com/banks"},
		Platform:           model.PlatformYouTube,
		VideoTitle:         "Banks will all collapse Monday!",
		VideoCreator:       "Doom Daily",
		ClaimExtracted:     "Banks will all collapse Monday!",
		SearchResultsFound: 1,
	}
}

func newTestServer(t *testing.T, r Researcher, withStore bool, opts Options) (*Server, *store.Store) {
	t.Helper()
	var st *store.Store
	var ql QueryLog
	if withStore {
		var err error
		st, err = store.Open(context.Background(), filepath.Join(t.TempDir(), "q.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		ql = st
	}
	s, err := New(r, ql, opts)
	require.NoError(t, err)
	return s, st
}

func postMessage(t *testing.T, s *Server, body string) string {
	t.Helper()
	form := url.Values{"Body": {body}, "From": {"whatsapp:+15550001111"}}
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "xml")

	var resp twimlResponse
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	return resp.Messages[0]
}

func TestWebhook_Greeting(t *testing.T) {
	r := &fakeResearcher{result: mediumResult()}
	s, _ := newTestServer(t, r, false, Options{})

	for _, greeting := range []string{"hi", "Hello", " HEY ", "start", "help"} {
		msg := postMessage(t, s, greeting)
		assert.Equal(t, welcomeMessage, msg, greeting)
	}
	assert.Empty(t, r.calls())
}

func TestWebhook_GreetingWithDashboard(t *testing.T) {
	s, _ := newTestServer(t, &fakeResearcher{}, false, Options{DashboardURL: "https://checks.example.org"})

	msg := postMessage(t, s, "hi")
	assert.True(t, strings.HasPrefix(msg, welcomeMessage))
	assert.True(t, strings.HasSuffix(msg, "See all checked videos: https://checks.example.org"))
}

func TestWebhook_NoURL(t *testing.T) {
	s, _ := newTestServer(t, &fakeResearcher{}, false, Options{})
	assert.Equal(t, noURLMessage, postMessage(t, s, "is this video true?"))
}

func TestWebhook_UnsupportedPlatform(t *testing.T) {
	r := &fakeResearcher{result: mediumResult()}
	s, _ := newTestServer(t, r, false, Options{})

	assert.Equal(t, unsupportedPlatformMessage, postMessage(t, s, "look https://vimeo.com/12345"))
	assert.Empty(t, r.calls())
}

func TestWebhook_ResearchAndLog(t *testing.T) {
	r := &fakeResearcher{result: mediumResult()}
	s, st := newTestServer(t, r, true, Options{})

	msg := postMessage(t, s, "Mum sent me this https://youtu.be/abc123 is it real?")

	assert.Equal(t, []string{"https://youtu.be/abc123"}, r.calls())
	assert.True(t, strings.HasPrefix(msg, "I couldn't find a formal fact-check"))
	assert.True(t, strings.HasSuffix(msg, "[Confidence: Medium - trusted news coverage found]"))
	assert.NotContains(t, msg, "alarmist")

	records, err := st.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://youtu.be/abc123", records[0].VideoURL)

	// Nothing about the sender is persisted
	raw, err := json.Marshal(records[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "15550001111")
}

func TestWebhook_ResearchError(t *testing.T) {
	r := &fakeResearcher{err: errors.New("watch page unavailable")}

	s, _ := newTestServer(t, r, false, Options{})
	assert.Equal(t, errorMessage, postMessage(t, s, "https://youtu.be/abc123"))

	debug, _ := newTestServer(t, r, false, Options{Debug: true})
	assert.Equal(t, errorMessage+"\n\nDebug: watch page unavailable", postMessage(t, debug, "https://youtu.be/abc123"))
}

func TestFormatReply(t *testing.T) {
	high := &model.ResearchResult{Explanation: "Rated false.", Confidence: model.ConfidenceHigh, ChannelIsSuspect: true}
	assert.Equal(t,
		"Rated false.\n\n[Confidence: High - formal fact-check found]\n[Note: This creator frequently posts alarmist content]",
		formatReply(high))

	low := &model.ResearchResult{Explanation: "Nothing found.", Confidence: model.ConfidenceLow}
	assert.Equal(t, "Nothing found.\n\n[Confidence: Low - limited information available]", formatReply(low))

	long := &model.ResearchResult{Explanation: strings.Repeat("é", 2000), Confidence: model.ConfidenceLow}
	reply := formatReply(long)
	assert.Equal(t, maxReplyChars, len([]rune(reply)))
	assert.True(t, strings.HasSuffix(reply, "..."))
}

func TestWebhookVerifyAndInfo(t *testing.T) {
	s, _ := newTestServer(t, &fakeResearcher{}, false, Options{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/webhook", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Webhook is active"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"running"`)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeResearcher{}, true, Options{Services: map[string]bool{"fact_check": true, "search": false}})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status   string          `json:"status"`
		Services map[string]bool `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, map[string]bool{"fact_check": true, "search": false, "query_log": true}, body.Services)
}

func TestAPI_QueriesAndStats(t *testing.T) {
	r := &fakeResearcher{result: mediumResult()}
	s, _ := newTestServer(t, r, true, Options{})

	postMessage(t, s, "https://youtu.be/one")
	postMessage(t, s, "https://www.tiktok.com/@someone/video/7234567890123456789")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/queries?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Queries []store.QueryRecord `json:"queries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Queries, 1)
	assert.Equal(t, "https://www.tiktok.com/@someone/video/7234567890123456789", list.Queries[0].VideoURL)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/queries?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats store.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.ByConfidence["medium"])
}

func TestAPI_DisabledLog(t *testing.T) {
	s, _ := newTestServer(t, &fakeResearcher{}, false, Options{})

	for _, path := range []string{"/api/queries", "/api/stats"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestDashboard(t *testing.T) {
	result := mediumResult()
	result.Explanation = "Reuters **disputes** this.<script>alert(1)</script>"
	result.ChannelIsSuspect = true
	s, _ := newTestServer(t, &fakeResearcher{result: result}, true, Options{})

	postMessage(t, s, "https://youtu.be/abc123")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	page := rec.Body.String()
	assert.Contains(t, page, "<strong>disputes</strong>")
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "Banks will all collapse Monday!")
	assert.Contains(t, page, "frequently posts alarmist content")
	assert.Contains(t, page, "MEDIUM confidence")
}

func TestDashboard_NotConfigured(t *testing.T) {
	s, _ := newTestServer(t, &fakeResearcher{}, false, Options{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Query log not configured")
}
