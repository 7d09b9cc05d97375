package video

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ppiankov/factcompanion/internal/model"
)

const channelFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Doom Daily</title>
  <entry><title>URGENT: banks closing</title></entry>
  <entry><title>   </title></entry>
  <entry><title>Gardening tips</title></entry>
  <entry><title>The collapse is here</title></entry>
</feed>`

func TestHistoryFetcher_YouTube(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("channel_id") != "UCdoom" {
			t.Errorf("Unexpected channel id: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = fmt.Fprint(w, channelFeed)
	}))
	defer server.Close()

	h := NewHistoryFetcher(newTestClient(), server.URL+"/feeds/videos.xml")
	titles := h.Fetch(context.Background(), "UCdoom", model.PlatformYouTube)

	want := []string{"URGENT: banks closing", "Gardening tips", "The collapse is here"}
	if len(titles) != len(want) {
		t.Fatalf("Expected %d titles, got %v", len(want), titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("titles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestHistoryFetcher_CapsAtTen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom">`)
		for i := 0; i < 15; i++ {
			_, _ = fmt.Fprintf(w, "<entry><title>Video %d</title></entry>", i)
		}
		_, _ = fmt.Fprint(w, "</feed>")
	}))
	defer server.Close()

	h := NewHistoryFetcher(newTestClient(), server.URL)
	if got := h.Fetch(context.Background(), "UC1", model.PlatformYouTube); len(got) != 10 {
		t.Errorf("Expected 10 titles, got %d", len(got))
	}
}

func TestHistoryFetcher_EmptyCases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	h := NewHistoryFetcher(newTestClient(), server.URL)
	ctx := context.Background()

	if got := h.Fetch(ctx, "", model.PlatformYouTube); len(got) != 0 {
		t.Errorf("Expected empty for missing id, got %v", got)
	}
	if got := h.Fetch(ctx, "doomtok", model.PlatformTikTok); len(got) != 0 {
		t.Errorf("Expected empty for TikTok, got %v", got)
	}
	if got := h.Fetch(ctx, "UC1", model.PlatformYouTube); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil list on failure, got %v", got)
	}
}
