package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/factcompanion/internal/fetch"
	"github.com/ppiankov/factcompanion/internal/model"
)

// Endpoints holds the platform URLs used for extraction
type Endpoints struct {
	YouTubeWatch string // video id is appended
	YouTubeFeed  string
	TikTokOEmbed string
}

// DefaultEndpoints returns the public platform endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{
		YouTubeWatch: "https://www.youtube.com/watch?v=",
		YouTubeFeed:  "https://www.youtube.com/feeds/videos.xml",
		TikTokOEmbed: "https://www.tiktok.com/oembed",
	}
}

// Extractor turns a video link into VideoInfo
type Extractor struct {
	client      *fetch.Client
	endpoints   Endpoints
	transcripts *TranscriptFetcher
}

// NewExtractor creates an extractor using the given endpoints
func NewExtractor(client *fetch.Client, endpoints Endpoints) *Extractor {
	return &Extractor{
		client:      client,
		endpoints:   endpoints,
		transcripts: NewTranscriptFetcher(client, endpoints.YouTubeWatch),
	}
}

// Extract fetches metadata for rawURL. Every failure is an *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*model.VideoInfo, error) {
	var (
		info *model.VideoInfo
		err  error
	)

	switch DetectPlatform(rawURL) {
	case model.PlatformYouTube:
		info, err = e.extractYouTube(ctx, rawURL)
	case model.PlatformTikTok:
		info, err = e.extractTikTok(ctx, rawURL)
	default:
		err = ErrUnsupportedPlatform
	}
	if err != nil {
		return nil, &ExtractionError{URL: rawURL, Err: err}
	}

	info.Description = model.Truncate(info.Description, model.MaxDescriptionChars)
	if len(info.Hashtags) > model.MaxHashtags {
		info.Hashtags = info.Hashtags[:model.MaxHashtags]
	}
	if info.Creator == "" {
		info.Creator = "Unknown"
	}
	return info, nil
}

func (e *Extractor) extractYouTube(ctx context.Context, rawURL string) (*model.VideoInfo, error) {
	videoID := YouTubeVideoID(rawURL)
	if videoID == "" {
		return nil, errors.New("no video id in link")
	}

	resp, err := e.client.Page(ctx, e.endpoints.YouTubeWatch+url.QueryEscape(videoID))
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	info := &model.VideoInfo{
		Platform: model.PlatformYouTube,
		URL:      rawURL,
		VideoID:  videoID,
	}

	player, err := parsePlayerResponse(doc)
	if err != nil || player.VideoDetails == nil {
		// Consent and bot-check pages still carry the og: tags
		slog.Debug("youtube: player response missing, using meta tags", slog.String("id", videoID), slog.Any("err", err))
		info.Title = metaContent(doc, "og:title")
		info.Description = metaContent(doc, "og:description")
		info.Creator = strings.TrimSpace(doc.Find(`link[itemprop="name"]`).First().AttrOr("content", ""))
		if info.Title == "" {
			return nil, errors.New("watch page has no video metadata")
		}
		return info, nil
	}

	d := player.VideoDetails
	if d.VideoID != "" {
		info.VideoID = d.VideoID
	}
	info.Title = d.Title
	info.Creator = d.Author
	info.CreatorID = d.ChannelID
	info.Description = d.ShortDescription
	info.Hashtags = d.Keywords
	info.ViewCount = player.viewCount()
	info.UploadDate = player.uploadDate()
	info.Transcript = e.transcripts.fromTracks(ctx, info.VideoID, player.tracks())

	if info.Title == "" {
		status := ""
		if player.PlayabilityStatus != nil {
			status = player.PlayabilityStatus.Reason
		}
		return nil, fmt.Errorf("video unavailable: %s", status)
	}
	return info, nil
}

type oembedResponse struct {
	Title          string `json:"title"`
	AuthorName     string `json:"author_name"`
	AuthorUniqueID string `json:"author_unique_id"`
	AuthorURL      string `json:"author_url"`
}

func (e *Extractor) extractTikTok(ctx context.Context, rawURL string) (*model.VideoInfo, error) {
	endpoint := e.endpoints.TikTokOEmbed + "?url=" + url.QueryEscape(rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch oembed: %w", err)
	}

	var oe oembedResponse
	if err := json.Unmarshal(resp.Body, &oe); err != nil {
		return nil, fmt.Errorf("decode oembed: %w", err)
	}
	if oe.Title == "" && oe.AuthorName == "" {
		return nil, errors.New("oembed returned no metadata")
	}

	creatorID := oe.AuthorUniqueID
	if creatorID == "" && oe.AuthorURL != "" {
		if i := strings.LastIndex(oe.AuthorURL, "/@"); i >= 0 {
			creatorID = oe.AuthorURL[i+2:]
		}
	}

	// TikTok captions double as title and description
	return &model.VideoInfo{
		Platform:    model.PlatformTikTok,
		URL:         rawURL,
		VideoID:     TikTokVideoID(rawURL),
		Title:       oe.Title,
		Creator:     oe.AuthorName,
		CreatorID:   creatorID,
		Description: oe.Title,
		Hashtags:    ParseHashtags(oe.Title),
	}, nil
}
