package evidence

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// TrustedDomains is the publisher allow-list for news search
type TrustedDomains struct {
	domains []string
	set     map[string]bool
}

// NewTrustedDomains normalizes domains (lowercase, no scheme or "www.")
func NewTrustedDomains(domains []string) *TrustedDomains {
	t := &TrustedDomains{set: make(map[string]bool, len(domains))}
	for _, d := range domains {
		d = normalizeHost(d)
		if d == "" || t.set[d] {
			continue
		}
		t.set[d] = true
		t.domains = append(t.domains, d)
	}
	return t
}

// Domains returns the allow-list in configured order
func (t *TrustedDomains) Domains() []string {
	return append([]string(nil), t.domains...)
}

// SiteFilter returns "(site:a OR site:b ...)", or "" for an empty list
func (t *TrustedDomains) SiteFilter() string {
	if len(t.domains) == 0 {
		return ""
	}
	parts := make([]string, len(t.domains))
	for i, d := range t.domains {
		parts[i] = "site:" + d
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// Contains reports whether rawURL is served by an allow-listed publisher.
// Subdomains match their listed parent (apnews.com covers www.apnews.com).
func (t *TrustedDomains) Contains(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := normalizeHost(parsed.Hostname())
	if host == "" {
		return false
	}

	if t.set[host] {
		return true
	}

	// Compare registrable domains so bbc.co.uk is not confused with co.uk
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	if t.set[registrable] {
		return true
	}

	for d := range t.set {
		if strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeHost(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/:"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}
