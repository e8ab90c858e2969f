// Package domainrep implements the domain-reputation tool (spec C4): a
// concurrent fan-out of four independent signals about a domain — WHOIS
// age, TLS posture, a third-party AV aggregator, and a safe-browsing
// lookup — aggregated into a single risk score. Never throws.
package domainrep

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the tool's never-throws return value.
type Result struct {
	Domain               string            `json:"domain"`
	AgeDays              *int              `json:"age_days,omitempty"`
	SSLValid             *bool             `json:"ssl_valid,omitempty"`
	SSLExpiryDays        *int              `json:"ssl_expiry_days,omitempty"`
	SelfSigned           *bool             `json:"self_signed,omitempty"`
	VirusTotalMalicious  *int              `json:"virustotal_malicious,omitempty"`
	VirusTotalTotal      *int              `json:"virustotal_total,omitempty"`
	SafeBrowsingFlagged  *bool             `json:"safe_browsing_flagged,omitempty"`
	RiskScore            int               `json:"risk_score"`
	RiskLevel            string            `json:"risk_level"`
	ChecksCompleted      map[string]bool   `json:"checks_completed"`
	ErrorMessages        map[string]string `json:"error_messages,omitempty"`
}

const (
	whoisTimeout        = 3 * time.Second
	sslTimeout          = 3 * time.Second
	virusTotalTimeout   = 5 * time.Second
	safeBrowsingTimeout = 3 * time.Second
)

// Tool holds the optional API keys for the two HTTPS-backed signals and
// a cache to avoid re-querying a domain within its TTL.
type Tool struct {
	virusTotalAPIKey   string
	safeBrowsingAPIKey string
	cache              *cache
	whois              whoisClient
	avChecker          avAggregatorClient
	sbChecker          safeBrowsingClient
}

// Config configures the optional external signals.
type Config struct {
	VirusTotalAPIKey   string
	SafeBrowsingAPIKey string
	CacheTTL           time.Duration
}

// New builds a Tool. Checks whose API key is empty are skipped, not
// treated as failures, per spec §4.4.
func New(cfg Config) *Tool {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Tool{
		virusTotalAPIKey:   cfg.VirusTotalAPIKey,
		safeBrowsingAPIKey: cfg.SafeBrowsingAPIKey,
		cache:              newCache(ttl),
		whois:              realWhoisClient{},
		avChecker:          newVirusTotalClient(cfg.VirusTotalAPIKey),
		sbChecker:          newSafeBrowsingClient(cfg.SafeBrowsingAPIKey),
	}
}

// CheckDomain normalizes u to a bare registrable domain and runs the
// four signals concurrently, each under its own timeout, tolerating any
// individual failure.
func (t *Tool) CheckDomain(ctx context.Context, rawURL string) Result {
	domain := registrableDomain(rawURL)
	result := Result{
		Domain:          domain,
		ChecksCompleted: make(map[string]bool, 4),
		ErrorMessages:   make(map[string]string),
	}

	if domain == "" {
		result.RiskLevel = "unknown"
		return result
	}

	if cached, ok := t.cache.get(domain); ok {
		return cached
	}

	g, gctx := errgroup.WithContext(ctx)

	// Each goroutine below owns its own outcome variable exclusively —
	// none of these are touched by more than one goroutine. They are
	// only merged into result's shared maps/fields after g.Wait()
	// returns, once all writers have finished, so the merge itself runs
	// single-threaded.
	var ageOut ageOutcome
	var sslOut sslOutcome
	var avOut avOutcome
	var sbOut sbOutcome

	g.Go(func() error {
		ageCtx, cancel := context.WithTimeout(gctx, whoisTimeout)
		defer cancel()
		age, err := t.whois.DomainAgeDays(ageCtx, domain)
		ageOut = ageOutcome{age: age, err: err}
		return nil
	})

	g.Go(func() error {
		sslCtx, cancel := context.WithTimeout(gctx, sslTimeout)
		defer cancel()
		valid, expiryDays, selfSigned, err := checkSSL(sslCtx, domain)
		sslOut = sslOutcome{valid: valid, expiryDays: expiryDays, selfSigned: selfSigned, err: err}
		return nil
	})

	if t.virusTotalAPIKey != "" {
		g.Go(func() error {
			avCtx, cancel := context.WithTimeout(gctx, virusTotalTimeout)
			defer cancel()
			malicious, total, err := t.avChecker.Check(avCtx, domain)
			avOut = avOutcome{malicious: malicious, total: total, err: err}
			return nil
		})
	}

	if t.safeBrowsingAPIKey != "" {
		g.Go(func() error {
			sbCtx, cancel := context.WithTimeout(gctx, safeBrowsingTimeout)
			defer cancel()
			flagged, err := t.sbChecker.Check(sbCtx, domain)
			sbOut = sbOutcome{flagged: flagged, err: err}
			return nil
		})
	}

	_ = g.Wait()

	if ageOut.err != nil {
		log.Printf("domainrep: whois check failed for %s: %v", domain, ageOut.err)
		result.ErrorMessages["age"] = ageOut.err.Error()
	} else {
		age := ageOut.age
		result.AgeDays = &age
		result.ChecksCompleted["age"] = true
	}

	if sslOut.err != nil {
		log.Printf("domainrep: ssl check failed for %s: %v", domain, sslOut.err)
		result.ErrorMessages["ssl"] = sslOut.err.Error()
	} else {
		valid, expiryDays, selfSigned := sslOut.valid, sslOut.expiryDays, sslOut.selfSigned
		result.SSLValid = &valid
		result.SSLExpiryDays = &expiryDays
		result.SelfSigned = &selfSigned
		result.ChecksCompleted["ssl"] = true
	}

	if t.virusTotalAPIKey != "" {
		if avOut.err != nil {
			log.Printf("domainrep: virustotal check failed for %s: %v", domain, avOut.err)
			result.ErrorMessages["virustotal"] = avOut.err.Error()
		} else {
			malicious, total := avOut.malicious, avOut.total
			result.VirusTotalMalicious = &malicious
			result.VirusTotalTotal = &total
			result.ChecksCompleted["virustotal"] = true
		}
	}

	if t.safeBrowsingAPIKey != "" {
		if sbOut.err != nil {
			log.Printf("domainrep: safe-browsing check failed for %s: %v", domain, sbOut.err)
			result.ErrorMessages["safe_browsing"] = sbOut.err.Error()
		} else {
			flagged := sbOut.flagged
			result.SafeBrowsingFlagged = &flagged
			result.ChecksCompleted["safe_browsing"] = true
		}
	}

	result.RiskScore, result.RiskLevel = scoreResult(result)
	if len(result.ErrorMessages) == 0 {
		result.ErrorMessages = nil
	}

	t.cache.set(domain, result)
	return result
}

type ageOutcome struct {
	age int
	err error
}

type sslOutcome struct {
	valid      bool
	expiryDays int
	selfSigned bool
	err        error
}

type avOutcome struct {
	malicious int
	total     int
	err       error
}

type sbOutcome struct {
	flagged bool
	err     error
}

// scoreResult implements spec §4.4's additive-then-normalized scoring:
// points accumulate per signal, then the raw total is rescaled against
// the maximum possible points among the checks that actually completed.
func scoreResult(r Result) (int, string) {
	raw := 0.0
	maxPossible := 0.0

	if r.ChecksCompleted["age"] && r.AgeDays != nil {
		maxPossible += 30
		switch {
		case *r.AgeDays < 7:
			raw += 30
		case *r.AgeDays < 30:
			raw += 20
		case *r.AgeDays < 90:
			raw += 10
		}
	}

	if r.ChecksCompleted["ssl"] {
		maxPossible += 20
		if r.SSLValid == nil || !*r.SSLValid {
			raw += 20
		} else if r.SSLExpiryDays != nil && *r.SSLExpiryDays < 30 {
			raw += 10
		}
	}

	if r.ChecksCompleted["virustotal"] && r.VirusTotalTotal != nil && *r.VirusTotalTotal > 0 {
		maxPossible += 40
		raw += 40 * float64(*r.VirusTotalMalicious) / float64(*r.VirusTotalTotal)
	}

	if r.ChecksCompleted["safe_browsing"] {
		maxPossible += 40
		if r.SafeBrowsingFlagged != nil && *r.SafeBrowsingFlagged {
			raw += 40
		}
	}

	if maxPossible == 0 {
		return 0, "unknown"
	}

	score := int(raw * 100 / maxPossible)
	if score > 100 {
		score = 100
	}

	level := "low"
	switch {
	case score >= 70:
		level = "high"
	case score >= 40:
		level = "medium"
	}
	return score, level
}

// registrableDomain strips scheme, path, port, and leading "www." to
// produce the bare domain WHOIS and TLS checks operate on.
func registrableDomain(rawURL string) string {
	candidate := rawURL
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
