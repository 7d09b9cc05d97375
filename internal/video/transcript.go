package video

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/factcompanion/internal/fetch"
	"github.com/ppiankov/factcompanion/internal/model"
)

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// TranscriptFetcher reads YouTube caption tracks. Failures yield an empty
// transcript; they never fail extraction.
type TranscriptFetcher struct {
	client   *fetch.Client
	watchURL string
	langs    []string
}

// NewTranscriptFetcher creates a fetcher that prefers the given languages
func NewTranscriptFetcher(client *fetch.Client, watchURL string, langs ...string) *TranscriptFetcher {
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &TranscriptFetcher{client: client, watchURL: watchURL, langs: langs}
}

// Fetch loads the watch page for videoID and returns its transcript, or ""
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoID string) string {
	if videoID == "" {
		return ""
	}

	resp, err := f.client.Page(ctx, f.watchURL+videoID)
	if err != nil {
		slog.Warn("transcript: watch page failed", slog.String("id", videoID), slog.Any("err", err))
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		slog.Warn("transcript: parse watch page failed", slog.String("id", videoID), slog.Any("err", err))
		return ""
	}

	player, err := parsePlayerResponse(doc)
	if err != nil {
		slog.Warn("transcript: no player response", slog.String("id", videoID), slog.Any("err", err))
		return ""
	}

	return f.fromTracks(ctx, videoID, player.tracks())
}

// fromTracks downloads the best caption track, logging and swallowing errors
func (f *TranscriptFetcher) fromTracks(ctx context.Context, videoID string, tracks []captionTrack) string {
	text, err := f.download(ctx, tracks)
	if err != nil {
		slog.Debug("transcript: unavailable", slog.String("id", videoID), slog.Any("err", err))
		return ""
	}
	return model.Truncate(text, model.MaxTranscriptChars)
}

func (f *TranscriptFetcher) download(ctx context.Context, tracks []captionTrack) (string, error) {
	track, ok := pickBestTrack(tracks, f.langs)
	if !ok {
		return "", errors.New("no caption tracks")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(resp.Body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext: %w", err)
	}

	parts := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		// Caption text is entity-encoded a second time inside the XML
		text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " ")
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("empty transcript")
	}
	return strings.Join(parts, " "), nil
}

// pickBestTrack returns a manual track when any exists, otherwise an
// auto-generated one. Within each tier the preferred languages win, in
// order, then the first track.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	var manual, auto []captionTrack
	for _, t := range tracks {
		// &exp=xpe tracks need a browser PoToken
		if t.BaseURL == "" || strings.Contains(t.BaseURL, "&exp=xpe") {
			continue
		}
		if t.Kind == "asr" {
			auto = append(auto, t)
		} else {
			manual = append(manual, t)
		}
	}

	for _, tier := range [][]captionTrack{manual, auto} {
		if len(tier) == 0 {
			continue
		}
		for _, lang := range langs {
			for _, t := range tier {
				if strings.HasPrefix(t.LanguageCode, lang) {
					return t, true
				}
			}
		}
		return tier[0], true
	}
	return captionTrack{}, false
}
