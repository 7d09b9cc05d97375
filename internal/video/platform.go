package video

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/factcompanion/internal/model"
)

var (
	youtubePatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/watch\?v=`),
		regexp.MustCompile(`youtu\.be/`),
		regexp.MustCompile(`youtube\.com/shorts/`),
	}
	tiktokPatterns = []*regexp.Regexp{
		regexp.MustCompile(`tiktok\.com/@[\w.-]+/video/`),
		regexp.MustCompile(`tiktok\.com/t/`),
		regexp.MustCompile(`vm\.tiktok\.com/`),
	}

	urlRE         = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")
	tiktokVideoRE = regexp.MustCompile(`/video/(\d+)`)
	hashtagRE     = regexp.MustCompile(`#(\w+)`)
)

// DetectPlatform classifies a link by URL pattern
func DetectPlatform(rawURL string) model.Platform {
	for _, re := range youtubePatterns {
		if re.MatchString(rawURL) {
			return model.PlatformYouTube
		}
	}
	for _, re := range tiktokPatterns {
		if re.MatchString(rawURL) {
			return model.PlatformTikTok
		}
	}
	return model.PlatformUnknown
}

// ExtractURL returns the first http(s) URL in a free-text message, or ""
func ExtractURL(message string) string {
	return urlRE.FindString(message)
}

// YouTubeVideoID returns the id from watch, youtu.be and shorts links
func YouTubeVideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if v := u.Query().Get("v"); v != "" {
		return v
	}

	path := strings.Trim(u.Path, "/")
	switch {
	case strings.HasSuffix(u.Hostname(), "youtu.be"):
		return firstSegment(path)
	case strings.HasPrefix(path, "shorts/"):
		return firstSegment(strings.TrimPrefix(path, "shorts/"))
	}
	return ""
}

// TikTokVideoID returns the numeric id of a canonical TikTok video link.
// Short links (vm.tiktok.com, /t/) carry no id until redirected.
func TikTokVideoID(rawURL string) string {
	if m := tiktokVideoRE.FindStringSubmatch(rawURL); len(m) == 2 {
		return m[1]
	}
	return ""
}

// ParseHashtags returns up to model.MaxHashtags tags from text, without '#'
func ParseHashtags(text string) []string {
	matches := hashtagRE.FindAllStringSubmatch(text, model.MaxHashtags)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
