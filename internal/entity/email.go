package entity

import (
	"regexp"
	"strings"

	"github.com/scamshield/agent/internal/models"
)

// emailPattern is RFC-pragmatic rather than RFC-exact: it accepts the
// shapes scammers actually send, not every shape the RFC allows.
var emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,24}`)

func extractEmails(text string) []models.Email {
	seen := make(map[string]bool)
	var out []models.Email

	for _, raw := range emailPattern.FindAllString(text, -1) {
		normalized := strings.ToLower(raw)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		at := strings.LastIndex(normalized, "@")
		if at < 0 {
			continue
		}

		out = append(out, models.Email{
			Raw:        raw,
			Normalized: normalized,
			Local:      normalized[:at],
			Domain:     normalized[at+1:],
		})
	}

	return out
}
