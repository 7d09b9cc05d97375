package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factcompanion/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "queries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult(title string) *model.ResearchResult {
	return &model.ResearchResult{
		Claim:              title,
		Confidence:         model.ConfidenceMedium,
		Explanation:        "Coverage from trusted outlets disputes this.",
		Sources:            []string{"https://www.reuters.com/a"},
		Platform:           model.PlatformYouTube,
		VideoURL:           "https://youtu.be/abc",
		VideoTitle:         title,
		VideoCreator:       "Some Channel",
		ClaimExtracted:     title,
		SearchResultsFound: 1,
	}
}

func TestOpen_MigratesToLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)

	version, err := schemaVersion(ctx, s.conn)
	require.NoError(t, err)
	assert.Equal(t, latestVersion(), version)

	_, err = s.LogResult(ctx, sampleResult("first"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening must keep rows and not re-run migrations destructively
	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	records, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLogResult_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.LogResult(ctx, sampleResult("Banks will all collapse Monday!"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	records, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, model.PlatformYouTube, rec.Platform)
	assert.Equal(t, model.ConfidenceMedium, rec.Confidence)
	assert.Equal(t, "Banks will all collapse Monday!", rec.VideoTitle)
	assert.Equal(t, []string{"https://www.reuters.com/a"}, rec.Sources)
	assert.Equal(t, 1, rec.SearchResultsFound)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestLogResult_Truncates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := sampleResult("long")
	r.ClaimExtracted = strings.Repeat("c", MaxClaimChars+50)
	r.Explanation = strings.Repeat("e", MaxExplanationChars+50)
	r.Sources = nil
	for i := 0; i < MaxSources+5; i++ {
		r.Sources = append(r.Sources, fmt.Sprintf("https://apnews.com/%d", i))
	}

	_, err := s.LogResult(ctx, r)
	require.NoError(t, err)

	records, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Len(t, records[0].ClaimExtracted, MaxClaimChars)
	assert.Len(t, records[0].Explanation, MaxExplanationChars)
	assert.Len(t, records[0].Sources, MaxSources)
	assert.Equal(t, "https://apnews.com/0", records[0].Sources[0])
}

func TestLogResult_NilSources(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := sampleResult("no sources")
	r.Sources = nil
	_, err := s.LogResult(ctx, r)
	require.NoError(t, err)

	records, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Sources)

	_, err = s.LogResult(ctx, nil)
	assert.Error(t, err)
}

func TestRecent_NewestFirstAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.LogResult(ctx, sampleResult(fmt.Sprintf("video %d", i)))
		require.NoError(t, err)
	}

	records, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "video 4", records[0].VideoTitle)
	assert.Equal(t, "video 3", records[1].VideoTitle)

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.SuspectChannels)

	yt := sampleResult("yt")
	tt := sampleResult("tt")
	tt.Platform = model.PlatformTikTok
	tt.Confidence = model.ConfidenceHigh
	tt.ChannelIsSuspect = true
	low := sampleResult("low")
	low.Confidence = model.ConfidenceLow

	for _, r := range []*model.ResearchResult{yt, tt, low} {
		_, err := s.LogResult(ctx, r)
		require.NoError(t, err)
	}

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.SuspectChannels)
	assert.Equal(t, map[string]int{"youtube": 2, "tiktok": 1}, stats.ByPlatform)
	assert.Equal(t, map[string]int{"medium": 1, "high": 1, "low": 1}, stats.ByConfidence)
}
