// Package websearch implements the budget- and cache-aware external
// search reconnaissance tool (spec C3): given a normalized entity, it
// queries a web-search provider, caches the result, and enforces a daily
// cost budget shared across all callers in the process.
package websearch

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Result is one search hit, already scored and truncated.
type Result struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Snippet       string  `json:"snippet"`
	PublishedDate string  `json:"published_date,omitempty"`
	Score         float64 `json:"score"`
	Domain        string  `json:"domain"`
}

// Response is the tool's never-throws return value.
type Response struct {
	Results   []Result `json:"results"`
	QueryUsed string   `json:"query_used"`
	Cached    bool     `json:"cached"`
}

// queryTemplates map entity type to the query spec §4.3 prescribes.
var queryTemplates = map[string]string{
	"phone":   `"%s" scam complaints OR fraud reports OR "is this a scam"`,
	"url":     `"%s" phishing OR scam warning OR "is this site safe"`,
	"email":   `"%s" spam OR scam reports OR fraudulent`,
	"bitcoin": `"%s" scam OR fraud OR stolen`,
	"payment": `"%s" scam OR suspicious OR fraud`,
}

// trustedSources receive an additive score boost because user reports on
// these domains are disproportionately reliable signal.
var trustedSources = map[string]bool{
	"reddit.com":         true,
	"bbb.org":            true,
	"ftc.gov":            true,
	"consumer.ftc.gov":   true,
	"trustpilot.com":     true,
	"consumeraffairs.com": true,
	"complaintsboard.com": true,
	"ripoffreport.com":   true,
	"ic3.gov":            true,
	"scamwarners.com":    true,
	"scamalert.sg":       true,
}

const (
	trustedBoost     = 0.3
	snippetMaxLen    = 200
	cacheTTLDefault  = 24 * time.Hour
	requestTimeout   = 5 * time.Second
)

// Provider is the external search backend. HTTPProvider is the production
// implementation; tests supply a stub.
type Provider interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error)
}

// SearchOptions mirrors spec §4.3's fixed request parameters.
type SearchOptions struct {
	Category          string
	UseAutoprompt     bool
	NumResults        int
	StartPublishedDate time.Time
}

// Tool is the process-wide web-search singleton: one cache connection,
// one budget meter, one rate limiter, shared by every orchestrator task.
type Tool struct {
	provider    Provider
	cache       *redis.Client
	limiter     *rate.Limiter
	cacheTTL    time.Duration
	maxResults  int
	dailyBudget float64
	pricePerSearch float64
}

// Config configures the tool's budget and caching behavior.
type Config struct {
	CacheTTL       time.Duration
	MaxResults     int
	DailyBudget    float64
	PricePerSearch float64
}

// New builds a Tool. cache may be nil (caching and budget tracking are
// then skipped — this is a degraded mode used only in tests).
func New(provider Provider, cache *redis.Client, cfg Config) *Tool {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cacheTTLDefault
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.DailyBudget <= 0 {
		cfg.DailyBudget = 10.0
	}
	if cfg.PricePerSearch <= 0 {
		cfg.PricePerSearch = 0.005
	}

	return &Tool{
		provider:       provider,
		cache:          cache,
		limiter:        rate.NewLimiter(rate.Every(time.Second/5), 5),
		cacheTTL:       cfg.CacheTTL,
		maxResults:     cfg.MaxResults,
		dailyBudget:    cfg.DailyBudget,
		pricePerSearch: cfg.PricePerSearch,
	}
}

// Search never returns an error to the caller: every failure mode
// (network error, non-2xx, timeout, budget exhaustion) degrades to an
// empty result set, logged for operators.
func (t *Tool) Search(ctx context.Context, entityValue, entityType string) Response {
	query := buildQuery(entityType, entityValue)
	cacheKey := t.cacheKey(entityType, entityValue)

	if cached, ok := t.readCache(ctx, cacheKey); ok {
		cached.Cached = true
		return cached
	}

	if !t.withinBudget(ctx) {
		log.Printf("websearch: daily budget exhausted, skipping search for %s:%s", entityType, entityValue)
		return Response{QueryUsed: query}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return Response{QueryUsed: query}
	}

	searchCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	raw, err := t.provider.Search(searchCtx, query, SearchOptions{
		Category:           "discussion",
		UseAutoprompt:      true,
		NumResults:         t.maxResults,
		StartPublishedDate: time.Now().Add(-90 * 24 * time.Hour),
	})
	if err != nil {
		log.Printf("websearch: search failed for %s:%s: %v", entityType, entityValue, err)
		return Response{QueryUsed: query}
	}

	results := processResults(raw)
	response := Response{Results: results, QueryUsed: query, Cached: false}

	t.chargeBudget(ctx)
	t.writeCache(ctx, cacheKey, response)

	return response
}

func buildQuery(entityType, value string) string {
	template, ok := queryTemplates[entityType]
	if !ok {
		template = queryTemplates["payment"]
	}
	return fmt.Sprintf(template, value)
}

// processResults deduplicates by domain keeping the highest raw score,
// applies the trusted-source boost, truncates snippets, and sorts
// descending by adjusted score.
func processResults(raw []Result) []Result {
	bestByDomain := make(map[string]Result)
	for _, r := range raw {
		existing, ok := bestByDomain[r.Domain]
		if !ok || r.Score > existing.Score {
			bestByDomain[r.Domain] = r
		}
	}

	out := make([]Result, 0, len(bestByDomain))
	for domain, r := range bestByDomain {
		if trustedSources[domain] {
			r.Score += trustedBoost
			if r.Score > 1.0 {
				r.Score = 1.0
			}
		}
		r.Snippet = truncateSnippet(r.Snippet)
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func truncateSnippet(s string) string {
	if len(s) <= snippetMaxLen {
		return s
	}
	return strings.TrimSpace(s[:snippetMaxLen-len("…")]) + "…"
}

func (t *Tool) cacheKey(entityType, value string) string {
	h := sha256.Sum256([]byte(entityType + "|" + value))
	return fmt.Sprintf("websearch:%x", h)
}

func (t *Tool) readCache(ctx context.Context, key string) (Response, bool) {
	if t.cache == nil {
		return Response{}, false
	}
	raw, err := t.cache.Get(ctx, key).Result()
	if err != nil {
		return Response{}, false
	}
	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return Response{}, false
	}
	return resp, true
}

func (t *Tool) writeCache(ctx context.Context, key string, resp Response) {
	if t.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := t.cache.Set(ctx, key, raw, t.cacheTTL).Err(); err != nil {
		log.Printf("websearch: cache write failed: %v", err)
	}
}

// budgetKey is UTC-day-scoped so the counter naturally resets via TTL
// expiry at midnight rather than requiring a cron job.
func budgetKey() string {
	return "websearch:cost:" + time.Now().UTC().Format("2006-01-02")
}

func (t *Tool) withinBudget(ctx context.Context) bool {
	if t.cache == nil {
		return true
	}
	raw, err := t.cache.Get(ctx, budgetKey()).Result()
	if err == redis.Nil {
		return true
	}
	if err != nil {
		return true
	}
	var spent float64
	if _, err := fmt.Sscanf(raw, "%f", &spent); err != nil {
		return true
	}
	return spent < t.dailyBudget
}

// chargeBudget atomically accumulates today's spend. INCRBYFLOAT on
// redis is atomic, so no concurrent charge is lost; the budget is checked
// before the call and charged after it, so callers that pass the check
// together can overshoot the budget by their combined price.
func (t *Tool) chargeBudget(ctx context.Context) {
	if t.cache == nil {
		return
	}
	key := budgetKey()
	if err := t.cache.IncrByFloat(ctx, key, t.pricePerSearch).Err(); err != nil {
		log.Printf("websearch: budget charge failed: %v", err)
		return
	}
	t.cache.Expire(ctx, key, 25*time.Hour)
}
