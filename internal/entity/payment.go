package entity

import (
	"regexp"
	"strings"

	"github.com/scamshield/agent/internal/models"
)

var (
	bitcoinPattern = regexp.MustCompile(`\b(1[a-km-zA-HJ-NP-Z1-9]{25,34}|3[a-km-zA-HJ-NP-Z1-9]{25,34}|bc1[a-z0-9]{25,59})\b`)
	cashtagPattern = regexp.MustCompile(`\$[A-Za-z][A-Za-z0-9_]{2,19}\b`)
	venmoPattern   = regexp.MustCompile(`@[A-Za-z][A-Za-z0-9_\-]{2,29}\b`)
	accountNumberPattern = regexp.MustCompile(`\b\d{8,17}\b`)
	routingNumberPattern = regexp.MustCompile(`\b\d{9}\b`)
)

var accountKeywords = []string{"account", "acct", "account number"}
var routingKeywords = []string{"routing", "aba", "routing number"}
var wireKeywords = []string{"wire transfer", "wire the money", "bank transfer", "swift", "iban"}

const paymentContextRadius = 20

func contextWindow(text string, start, end int) string {
	lo := start - paymentContextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + paymentContextRadius
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}

func nearbyKeyword(text string, pos int, keywords []string) bool {
	lo := pos - 40
	if lo < 0 {
		lo = 0
	}
	hi := pos + 40
	if hi > len(text) {
		hi = len(text)
	}
	window := strings.ToLower(text[lo:hi])
	for _, kw := range keywords {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

func extractPayments(text string) []models.Payment {
	scratch := deobfuscate(text)
	seen := make(map[string]bool)
	var out []models.Payment

	addPayment := func(kind models.PaymentKind, value, ctx string) {
		key := string(kind) + ":" + value
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, models.Payment{Kind: kind, Value: value, ContextWindow: ctx})
	}

	for _, loc := range bitcoinPattern.FindAllStringIndex(scratch, -1) {
		value := scratch[loc[0]:loc[1]]
		addPayment(models.PaymentKindBitcoin, value, contextWindow(scratch, loc[0], loc[1]))
	}

	for _, loc := range cashtagPattern.FindAllStringIndex(scratch, -1) {
		value := scratch[loc[0]:loc[1]]
		addPayment(models.PaymentKindCashApp, value, contextWindow(scratch, loc[0], loc[1]))
	}

	for _, loc := range venmoPattern.FindAllStringIndex(scratch, -1) {
		value := scratch[loc[0]:loc[1]]
		addPayment(models.PaymentKindVenmo, value, contextWindow(scratch, loc[0], loc[1]))
	}

	for _, loc := range routingNumberPattern.FindAllStringIndex(scratch, -1) {
		if !nearbyKeyword(scratch, loc[0], routingKeywords) {
			continue
		}
		value := scratch[loc[0]:loc[1]]
		addPayment(models.PaymentKindRouting, value, contextWindow(scratch, loc[0], loc[1]))
	}

	for _, loc := range accountNumberPattern.FindAllStringIndex(scratch, -1) {
		if !nearbyKeyword(scratch, loc[0], accountKeywords) {
			continue
		}
		value := scratch[loc[0]:loc[1]]
		addPayment(models.PaymentKindAccount, value, contextWindow(scratch, loc[0], loc[1]))
	}

	lowerScratch := strings.ToLower(scratch)
	for _, kw := range wireKeywords {
		if idx := strings.Index(lowerScratch, kw); idx >= 0 {
			addPayment(models.PaymentKindWire, kw, contextWindow(scratch, idx, idx+len(kw)))
		}
	}

	return out
}
