package video

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	VideoDetails *struct {
		VideoID          string   `json:"videoId"`
		Title            string   `json:"title"`
		Author           string   `json:"author"`
		ChannelID        string   `json:"channelId"`
		ShortDescription string   `json:"shortDescription"`
		Keywords         []string `json:"keywords"`
		ViewCount        string   `json:"viewCount"`
	} `json:"videoDetails"`
	Microformat *struct {
		Renderer struct {
			UploadDate  string `json:"uploadDate"`
			PublishDate string `json:"publishDate"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
	Captions *struct {
		Tracklist struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

func (p *playerResponse) tracks() []captionTrack {
	if p.Captions == nil {
		return nil
	}
	return p.Captions.Tracklist.CaptionTracks
}

func (p *playerResponse) viewCount() *int64 {
	if p.VideoDetails == nil || p.VideoDetails.ViewCount == "" {
		return nil
	}
	n, err := strconv.ParseInt(p.VideoDetails.ViewCount, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func (p *playerResponse) uploadDate() string {
	if p.Microformat == nil {
		return ""
	}
	if d := p.Microformat.Renderer.UploadDate; d != "" {
		return d
	}
	return p.Microformat.Renderer.PublishDate
}

// parsePlayerResponse finds ytInitialPlayerResponse in one of the page's
// inline scripts
func parsePlayerResponse(doc *goquery.Document) (*playerResponse, error) {
	var raw []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, playerResponseMarker)
		if idx < 0 {
			return true
		}
		raw = extractJSON([]byte(strings.TrimSpace(text[idx+len(playerResponseMarker):])))
		return raw == nil
	})
	if raw == nil {
		return nil, errors.New("ytInitialPlayerResponse not found")
	}

	var p playerResponse
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// extractJSON returns the balanced JSON object at the start of b
func extractJSON(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// metaContent reads an og:/name= meta tag
func metaContent(doc *goquery.Document, key string) string {
	sel := doc.Find(`meta[property="` + key + `"]`)
	if sel.Length() == 0 {
		sel = doc.Find(`meta[name="` + key + `"]`)
	}
	v, _ := sel.First().Attr("content")
	return strings.TrimSpace(v)
}
