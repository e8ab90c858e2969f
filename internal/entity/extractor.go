// Package entity extracts normalized, deduplicated scam-relevant entities
// from raw text. Extraction is pure and side-effect free: no I/O, no
// shared state between calls.
package entity

import "github.com/scamshield/agent/internal/models"

// maxInputChars bounds extraction cost; longer input is head-truncated
// before any pattern runs.
const maxInputChars = 5000

// Options controls extraction behavior.
type Options struct {
	// DefaultRegion is the phone-parsing region used when a candidate
	// carries no country code. Defaults to "US".
	DefaultRegion string

	// FilterCommonDomains drops well-known legitimate domains (google.com,
	// facebook.com, …) from the URL result when true.
	FilterCommonDomains bool

	// FilterCommonEmailProviders drops common consumer email domains
	// (gmail.com, yahoo.com, …) from the email result when true.
	FilterCommonEmailProviders bool
}

var commonDomains = map[string]bool{
	"google.com":   true,
	"facebook.com": true,
	"youtube.com":  true,
	"wikipedia.org": true,
	"amazon.com":   true,
	"microsoft.com": true,
	"apple.com":    true,
}

var commonEmailProviders = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
	"icloud.com":  true,
}

// Extract returns the normalized, deduplicated entity bundle found in
// text. It never fails: empty or garbage input produces an empty bundle.
// Safe for concurrent use; extraction holds no state between calls.
func Extract(text string, opts Options) models.ExtractedEntities {
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}

	scratch := deobfuscate(text)

	phones := extractPhones(scratch, opts.DefaultRegion)
	urls := extractURLs(scratch)
	emails := extractEmails(scratch)
	payments := extractPayments(text)
	amounts := extractAmounts(scratch)
	companies := extractCompanies(scratch)

	if opts.FilterCommonDomains {
		urls = filterURLs(urls)
	}
	if opts.FilterCommonEmailProviders {
		emails = filterEmails(emails)
	}

	return models.ExtractedEntities{
		Phones:    phones,
		URLs:      urls,
		Emails:    emails,
		Payments:  payments,
		Amounts:   amounts,
		Companies: companies,
	}
}

func filterURLs(urls []models.URL) []models.URL {
	out := urls[:0]
	for _, u := range urls {
		if !commonDomains[u.Domain] {
			out = append(out, u)
		}
	}
	return out
}

func filterEmails(emails []models.Email) []models.Email {
	out := emails[:0]
	for _, e := range emails {
		if !commonEmailProviders[e.Domain] {
			out = append(out, e)
		}
	}
	return out
}
