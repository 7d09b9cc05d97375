package model

// Platform identifies the video-sharing site a link points to
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformTikTok  Platform = "tiktok"
	PlatformUnknown Platform = "unknown"
)

// Field limits applied when VideoInfo is constructed
const (
	MaxDescriptionChars = 1500
	MaxTranscriptChars  = 5000
	MaxHashtags         = 10
)

// VideoInfo is the metadata extracted for one shared video.
// It is built once per research run and not modified afterwards.
type VideoInfo struct {
	Platform    Platform `json:"platform"`
	URL         string   `json:"url"`      // Link as shared by the user
	VideoID     string   `json:"video_id"` // Platform-native id
	Title       string   `json:"title"`
	Creator     string   `json:"creator"`               // Display name of the uploader
	CreatorID   string   `json:"creator_id,omitempty"`  // Channel / account id, empty if unknown
	Description string   `json:"description,omitempty"` // Truncated to MaxDescriptionChars
	Transcript  string   `json:"transcript,omitempty"`  // Truncated to MaxTranscriptChars, empty if unavailable
	ViewCount   *int64   `json:"view_count,omitempty"`
	UploadDate  string   `json:"upload_date,omitempty"` // YYYY-MM-DD when known
	Hashtags    []string `json:"hashtags,omitempty"`    // At most MaxHashtags, in source order
}

// HasTranscript reports whether a transcript was obtained
func (v *VideoInfo) HasTranscript() bool {
	return v.Transcript != ""
}

// Truncate returns s cut to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
