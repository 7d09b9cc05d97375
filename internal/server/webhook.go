package server

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/video"
)

// Reply texts
const (
	welcomeMessage = "Hi! I'm here to help you check if videos are trustworthy.\n\n" +
		"Just send me a YouTube or TikTok link, and I'll:\n" +
		"1. Check what the video claims\n" +
		"2. Look for fact-checks from trusted sources\n" +
		"3. Give you a clear, sourced explanation\n\n" +
		"Try sending a link now!"

	noURLMessage = "I didn't see a video link in your message.\n\n" +
		"Send me a YouTube or TikTok URL and I'll research it for you."

	unsupportedPlatformMessage = "I can only check YouTube and TikTok videos right now.\n\n" +
		"Send me a link from one of those platforms and I'll help!"

	errorMessage = "Sorry, I had trouble analyzing that video. " +
		"Please try again, or try a different link."

	suspectNote = "\n[Note: This creator frequently posts alarmist content]"
)

// Messages longer than this are cut; the carrier limit is 1600
const maxReplyChars = 1500

var greetings = map[string]bool{
	"hi":    true,
	"hello": true,
	"hey":   true,
	"start": true,
	"help":  true,
}

// twimlResponse is the messaging XML reply body
type twimlResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

func (s *Server) handleWebhook(c *gin.Context) {
	body := strings.TrimSpace(c.PostForm("Body"))
	// "From" is never read. Sender identity must not reach the pipeline or
	// the query log.

	rawURL := video.ExtractURL(body)
	if rawURL == "" {
		if greetings[strings.ToLower(body)] {
			s.reply(c, s.welcome())
		} else {
			s.reply(c, noURLMessage)
		}
		return
	}

	if video.DetectPlatform(rawURL) == model.PlatformUnknown {
		s.reply(c, unsupportedPlatformMessage)
		return
	}

	ctx := c.Request.Context()
	result, err := s.research.Research(ctx, rawURL)
	if err != nil {
		slog.Warn("webhook: research failed", slog.String("url", rawURL), slog.Any("err", err))
		msg := errorMessage
		if s.opts.Debug {
			msg += "\n\nDebug: " + err.Error()
		}
		s.reply(c, msg)
		return
	}

	if s.queries != nil {
		if _, err := s.queries.LogResult(ctx, result); err != nil {
			slog.Warn("webhook: query log failed", slog.Any("err", err))
		}
	}

	s.reply(c, formatReply(result))
}

func (s *Server) handleWebhookVerify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Webhook is active"})
}

func (s *Server) welcome() string {
	if s.opts.DashboardURL == "" {
		return welcomeMessage
	}
	return welcomeMessage + "\n\n📊 See all checked videos: " + s.opts.DashboardURL
}

func (s *Server) reply(c *gin.Context, text string) {
	c.XML(http.StatusOK, twimlResponse{Messages: []string{text}})
}

// formatReply renders a result as one chat message: explanation, confidence
// label, then the creator note when it applies
func formatReply(result *model.ResearchResult) string {
	var b strings.Builder
	b.WriteString(result.Explanation)
	b.WriteString(confidenceLabel(result.Confidence))
	if result.ChannelIsSuspect {
		b.WriteString(suspectNote)
	}

	text := b.String()
	if utf8.RuneCountInString(text) > maxReplyChars {
		text = model.Truncate(text, maxReplyChars-3) + "..."
	}
	return text
}

func confidenceLabel(c model.Confidence) string {
	switch c {
	case model.ConfidenceHigh:
		return "\n\n[Confidence: High - formal fact-check found]"
	case model.ConfidenceMedium:
		return "\n\n[Confidence: Medium - trusted news coverage found]"
	default:
		return "\n\n[Confidence: Low - limited information available]"
	}
}
