package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/factcompanion/internal/model"
)

// Column limits for logged rows
const (
	MaxClaimChars       = 1000
	MaxExplanationChars = 5000
	MaxSources          = 10
)

// DefaultRecentLimit is used when Recent is called with a non-positive limit
const DefaultRecentLimit = 50

// Fixed-width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// QueryRecord is one logged research run
type QueryRecord struct {
	ID                 string           `json:"id"`
	CreatedAt          time.Time        `json:"created_at"`
	Platform           model.Platform   `json:"platform"`
	VideoURL           string           `json:"video_url"`
	VideoTitle         string           `json:"video_title"`
	VideoCreator       string           `json:"video_creator"`
	ClaimExtracted     string           `json:"claim_extracted"`
	Confidence         model.Confidence `json:"confidence"`
	Explanation        string           `json:"explanation"`
	Sources            []string         `json:"sources"`
	ChannelIsSuspect   bool             `json:"channel_is_suspect"`
	FactChecksFound    int              `json:"fact_checks_found"`
	SearchResultsFound int              `json:"search_results_found"`
}

// Stats summarizes the query log
type Stats struct {
	Total           int            `json:"total"`
	ByPlatform      map[string]int `json:"by_platform"`
	ByConfidence    map[string]int `json:"by_confidence"`
	SuspectChannels int            `json:"suspect_channels"`
}

// LogResult stores one research result and returns the new row id.
// Long text columns are truncated and at most MaxSources sources are kept.
func (s *Store) LogResult(ctx context.Context, result *model.ResearchResult) (string, error) {
	if result == nil {
		return "", errors.New("nil result")
	}

	sources := result.Sources
	if len(sources) > MaxSources {
		sources = sources[:MaxSources]
	}
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return "", fmt.Errorf("encode sources: %w", err)
	}

	id := uuid.NewString()
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO queries (id, created_at, platform, video_url, video_title, video_creator,
		claim_extracted, confidence, explanation, sources, channel_is_suspect,
		fact_checks_found, search_results_found)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		time.Now().UTC().Format(timeLayout),
		string(result.Platform),
		result.VideoURL,
		result.VideoTitle,
		result.VideoCreator,
		model.Truncate(result.ClaimExtracted, MaxClaimChars),
		string(result.Confidence),
		model.Truncate(result.Explanation, MaxExplanationChars),
		string(sourcesJSON),
		result.ChannelIsSuspect,
		result.FactChecksFound,
		result.SearchResultsFound,
	)
	if err != nil {
		return "", fmt.Errorf("insert query: %w", err)
	}
	return id, nil
}

// Recent returns the newest logged queries first
func (s *Store) Recent(ctx context.Context, limit int) ([]QueryRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, created_at, platform, video_url, video_title, video_creator, claim_extracted,
		confidence, explanation, sources, channel_is_suspect, fact_checks_found, search_results_found
		FROM queries ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select queries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []QueryRecord
	for rows.Next() {
		var (
			rec                       QueryRecord
			createdAt, sourcesJSON    string
			platform, confidence      string
			title, creator, claim, ex sql.NullString
		)
		if err := rows.Scan(&rec.ID, &createdAt, &platform, &rec.VideoURL, &title, &creator, &claim,
			&confidence, &ex, &sourcesJSON, &rec.ChannelIsSuspect, &rec.FactChecksFound, &rec.SearchResultsFound); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}

		rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		rec.Platform = model.Platform(platform)
		rec.Confidence = model.Confidence(confidence)
		rec.VideoTitle = title.String
		rec.VideoCreator = creator.String
		rec.ClaimExtracted = claim.String
		rec.Explanation = ex.String
		if err := json.Unmarshal([]byte(sourcesJSON), &rec.Sources); err != nil {
			rec.Sources = nil
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats aggregates totals over the whole log
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByPlatform:   make(map[string]int),
		ByConfidence: make(map[string]int),
	}

	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(channel_is_suspect), 0) FROM queries",
	).Scan(&stats.Total, &stats.SuspectChannels)
	if err != nil {
		return nil, fmt.Errorf("count queries: %w", err)
	}

	if err := s.groupCount(ctx, "platform", stats.ByPlatform); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx, "confidence", stats.ByConfidence); err != nil {
		return nil, err
	}
	return stats, nil
}

// groupCount fills into with row counts grouped by column, which must be a
// trusted identifier
func (s *Store) groupCount(ctx context.Context, column string, into map[string]int) error {
	rows, err := s.conn.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, COUNT(*) FROM queries GROUP BY %s", column, column),
	)
	if err != nil {
		return fmt.Errorf("group by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		into[key] = n
	}
	return rows.Err()
}
