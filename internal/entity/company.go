package entity

import (
	"regexp"
	"strings"

	"github.com/scamshield/agent/internal/models"
)

var companyPattern = regexp.MustCompile(`\b([A-Z][A-Za-z0-9&',.\- ]{1,60}?)\s+(Pte Ltd|Inc|Corp|Limited|LLC|Company|Corporation)\b`)

var departmentVariantPattern = regexp.MustCompile(`\b([A-Z][A-Za-z0-9&',.\- ]{1,60}?)\s+(Department|Division|Unit|Center)\b`)

var whitespacePattern = regexp.MustCompile(`\s+`)

func extractCompanies(text string) []models.Company {
	seen := make(map[string]bool)
	var out []models.Company

	for _, m := range companyPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.TrimSpace(m[0])
		normalized := normalizeCompanyName(raw)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, models.Company{Raw: raw, Normalized: normalized})
	}

	for _, m := range departmentVariantPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.TrimSpace(m[0])
		normalized := normalizeCompanyName(raw)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, models.Company{Raw: raw, Normalized: normalized, IsDepartmentVariant: true})
	}

	return out
}

func normalizeCompanyName(raw string) string {
	collapsed := whitespacePattern.ReplaceAllString(raw, " ")
	return strings.ToLower(strings.TrimSpace(collapsed))
}
