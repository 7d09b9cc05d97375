package video

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/factcompanion/internal/fetch"
	"github.com/ppiankov/factcompanion/internal/model"
)

// historyLimit is how many recent titles are profiled per creator
const historyLimit = 10

// HistoryFetcher lists a creator's recent video titles from the channel feed
type HistoryFetcher struct {
	client  *fetch.Client
	feedURL string
	parser  *gofeed.Parser
}

// NewHistoryFetcher creates a fetcher reading feeds at feedURL?channel_id=<id>
func NewHistoryFetcher(client *fetch.Client, feedURL string) *HistoryFetcher {
	return &HistoryFetcher{
		client:  client,
		feedURL: feedURL,
		parser:  gofeed.NewParser(),
	}
}

// Fetch returns up to 10 recent non-empty titles. Missing ids, unsupported
// platforms and any failure yield an empty list.
func (h *HistoryFetcher) Fetch(ctx context.Context, creatorID string, platform model.Platform) []string {
	if creatorID == "" || platform != model.PlatformYouTube {
		return []string{}
	}

	feedURL := h.feedURL + "?channel_id=" + url.QueryEscape(creatorID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return []string{}
	}
	req.Header.Set("Accept", "application/atom+xml, application/xml;q=0.9")

	resp, err := h.client.Do(req)
	if err != nil {
		slog.Warn("history: feed fetch failed", slog.String("channel", creatorID), slog.Any("err", err))
		return []string{}
	}

	feed, err := h.parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		slog.Warn("history: feed parse failed", slog.String("channel", creatorID), slog.Any("err", err))
		return []string{}
	}

	titles := make([]string, 0, historyLimit)
	for _, item := range feed.Items {
		if len(titles) == historyLimit {
			break
		}
		if title := strings.TrimSpace(item.Title); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
