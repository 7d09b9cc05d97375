package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	dashboardLimit = 100
	maxAPILimit    = 500
	shownSources   = 5
)

// dashboard renders the query log as HTML
type dashboard struct {
	page      *template.Template
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

func newDashboard() (*dashboard, error) {
	sanitizer := bluemonday.StrictPolicy()
	sanitizer.AllowElements("p", "br", "strong", "em", "code", "pre", "blockquote")
	sanitizer.AllowElements("ul", "ol", "li")
	sanitizer.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	sanitizer.AllowAttrs("href").OnElements("a")
	sanitizer.AllowStandardURLs()
	sanitizer.RequireParseableURLs(true)
	sanitizer.AddTargetBlankToFullyQualifiedLinks(true)
	sanitizer.RequireNoFollowOnLinks(true)

	d := &dashboard{
		md:        goldmark.New(),
		sanitizer: sanitizer,
	}

	funcMap := template.FuncMap{
		"markdown": d.renderMarkdown,
		"upper":    strings.ToUpper,
		"shorten":  shorten,
		"count": func(m map[string]int, key string) int {
			return m[key]
		},
	}

	page, err := template.New("dashboard.html").Funcs(funcMap).ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	d.page = page
	return d, nil
}

// renderMarkdown converts explanation text to sanitized HTML
func (d *dashboard) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := d.md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(d.sanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized above
}

// shorten cuts s to n runes for link labels
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return model.Truncate(s, n) + "..."
}

type dashboardData struct {
	Configured bool
	Queries    []store.QueryRecord
	Stats      *store.Stats
	MaxSources int
}

func (s *Server) handleDashboard(c *gin.Context) {
	data := dashboardData{MaxSources: shownSources}

	if s.queries != nil {
		ctx := c.Request.Context()
		queries, err := s.queries.Recent(ctx, dashboardLimit)
		if err != nil {
			slog.Error("dashboard: recent queries failed", slog.Any("err", err))
			c.String(http.StatusInternalServerError, "Internal server error")
			return
		}
		stats, err := s.queries.Stats(ctx)
		if err != nil {
			slog.Error("dashboard: stats failed", slog.Any("err", err))
			c.String(http.StatusInternalServerError, "Internal server error")
			return
		}
		data.Configured = true
		data.Queries = queries
		data.Stats = stats
	}

	var buf bytes.Buffer
	if err := s.dash.page.Execute(&buf, data); err != nil {
		slog.Error("dashboard: render failed", slog.Any("err", err))
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleQueries(c *gin.Context) {
	if s.queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "query log disabled"})
		return
	}

	limit := store.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"err": "bad limit"})
			return
		}
		limit = min(n, maxAPILimit)
	}

	queries, err := s.queries.Recent(c.Request.Context(), limit)
	if err != nil {
		slog.Error("api: recent queries failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"err": "query log unavailable"})
		return
	}
	if queries == nil {
		queries = []store.QueryRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"queries": queries})
}

func (s *Server) handleStats(c *gin.Context) {
	if s.queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "query log disabled"})
		return
	}

	stats, err := s.queries.Stats(c.Request.Context())
	if err != nil {
		slog.Error("api: stats failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"err": "query log unavailable"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
