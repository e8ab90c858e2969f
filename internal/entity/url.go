package entity

import (
	"regexp"
	"strings"

	"github.com/scamshield/agent/internal/models"
)

var (
	schemeURLPattern = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)
	bareDomainPattern = regexp.MustCompile(`(?i)\b([a-z0-9][a-z0-9-]*\.)+(com|net|org|info|biz|co|io|me|us|uk|ca|au|xyz|top|club|online|site|shop|app)\b(/[^\s<>"']*)?`)
	trailingPunct     = regexp.MustCompile(`[.,;:!?'")\]]+$`)
)

var shortenerDomains = map[string]bool{
	"bit.ly":     true,
	"t.co":       true,
	"tinyurl.com": true,
	"goo.gl":     true,
	"ow.ly":      true,
	"is.gd":      true,
}

func extractURLs(text string) []models.URL {
	seen := make(map[string]bool)
	var out []models.URL

	for _, raw := range schemeURLPattern.FindAllString(text, -1) {
		u := normalizeURL(raw, true)
		if u == nil || seen[u.Normalized] {
			continue
		}
		seen[u.Normalized] = true
		out = append(out, *u)
	}

	for _, raw := range bareDomainPattern.FindAllString(text, -1) {
		u := normalizeURL(raw, false)
		if u == nil || seen[u.Normalized] {
			continue
		}
		seen[u.Normalized] = true
		out = append(out, *u)
	}

	return out
}

// normalizeURL lowercases the domain, strips trailing punctuation and
// default ports, and adds a scheme when the match came from the
// bare-domain pass.
func normalizeURL(raw string, hadScheme bool) *models.URL {
	clean := trailingPunct.ReplaceAllString(raw, "")
	if clean == "" {
		return nil
	}

	withScheme := clean
	if !hadScheme {
		withScheme = "https://" + clean
	}

	lower := strings.ToLower(withScheme)
	scheme := "https"
	rest := lower
	if idx := strings.Index(lower, "://"); idx >= 0 {
		scheme = lower[:idx]
		rest = lower[idx+3:]
	}

	domain := rest
	path := ""
	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		domain = rest[:idx]
		path = rest[idx:]
	}

	domain = strings.TrimSuffix(domain, ":80")
	domain = strings.TrimSuffix(domain, ":443")
	if domain == "" {
		return nil
	}

	normalized := scheme + "://" + domain + path
	return &models.URL{
		Raw:         raw,
		Normalized:  normalized,
		Scheme:      scheme,
		Domain:      domain,
		IsShortener: shortenerDomains[domain],
	}
}
