// Package config loads process configuration from the environment,
// following the recognized-options table in spec §6.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable, process-wide configuration struct. Secrets
// enter via environment variables, including those Load reads from a
// local .env file.
type Config struct {
	Ingress   IngressConfig
	LLM       LLMConfig
	Exa       ExaConfig
	DomainRep DomainRepConfig
	Registry  PersistenceConfig
	Store     PersistenceConfig
	Queue     QueueConfig
}

// IngressConfig controls the fast-path/agent-path routing gate.
type IngressConfig struct {
	Port             string
	EnableMCPAgent   bool
	WorkerHealthWait time.Duration
}

// LLMConfig configures the reasoner and the ingress fast-path classifier.
type LLMConfig struct {
	Provider      string // "gemini" or "generic"
	Model         string
	APIKey        string
	LLMModelFast  string
	LLMModelSmart string
	BaseURL       string
	Format        string // "openai", "ollama", "raw"
}

// ExaConfig configures the web-search tool.
type ExaConfig struct {
	APIKey      string
	CacheTTL    time.Duration
	MaxResults  int
	DailyBudget float64
	PricePerSearch float64
	RedisURL    string
}

// DomainRepConfig configures the domain-reputation tool's optional
// external signals.
type DomainRepConfig struct {
	VirusTotalAPIKey    string
	SafeBrowsingAPIKey  string
	ACRAAPIKey          string
	CompaniesHouseAPIKey string
	CacheTTL            time.Duration
}

// QueueConfig configures task dispatch.
type QueueConfig struct {
	BrokerURL       string
	ResultBackendURL string
	MaxRetries      int
}

// PersistenceConfig is a generic connection-string holder reused for the
// registry store and the results/session store.
type PersistenceConfig struct {
	URL        string
	ServiceKey string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}

// Load reads a .env file (if present — a missing file is not an error,
// since this service normally runs without one in a container) and then
// layers environment variables on top.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Ingress: IngressConfig{
			Port:             getEnvOrDefault("PORT", "8080"),
			EnableMCPAgent:   getEnvBool("ENABLE_MCP_AGENT", true),
			WorkerHealthWait: time.Duration(getEnvInt("WORKER_HEALTH_TIMEOUT_MS", 500)) * time.Millisecond,
		},
		LLM: LLMConfig{
			Provider:      getEnvOrDefault("LLM_PROVIDER", "gemini"),
			Model:         os.Getenv("LLM_MODEL"),
			APIKey:        firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("OPENAI_API_KEY"), os.Getenv("API_KEY")),
			LLMModelFast:  getEnvOrDefault("LLM_MODEL_FAST", "gemini-2.5-flash"),
			LLMModelSmart: getEnvOrDefault("LLM_MODEL_SMART", "gemini-2.5-pro"),
			BaseURL:       os.Getenv("LLM_BASE_URL"),
			Format:        getEnvOrDefault("LLM_FORMAT", "openai"),
		},
		Exa: ExaConfig{
			APIKey:         os.Getenv("EXA_API_KEY"),
			CacheTTL:       getEnvSeconds("EXA_CACHE_TTL", 86400),
			MaxResults:     getEnvInt("EXA_MAX_RESULTS", 10),
			DailyBudget:    getEnvFloat("EXA_DAILY_BUDGET", 10.0),
			PricePerSearch: getEnvFloat("EXA_PRICE_PER_SEARCH", 0.005),
			RedisURL:       getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		},
		DomainRep: DomainRepConfig{
			VirusTotalAPIKey:     os.Getenv("VIRUSTOTAL_API_KEY"),
			SafeBrowsingAPIKey:   os.Getenv("SAFE_BROWSING_API_KEY"),
			ACRAAPIKey:           os.Getenv("ACRA_API_KEY"),
			CompaniesHouseAPIKey: os.Getenv("COMPANIES_HOUSE_API_KEY"),
			CacheTTL:             getEnvSeconds("DOMAIN_REP_CACHE_TTL", 7*86400),
		},
		Registry: PersistenceConfig{
			URL:        getEnvOrDefault("DATABASE_URL", os.Getenv("PERSISTENCE_URL")),
			ServiceKey: os.Getenv("PERSISTENCE_SERVICE_KEY"),
		},
		Store: PersistenceConfig{
			URL:        getEnvOrDefault("DATABASE_URL", os.Getenv("PERSISTENCE_URL")),
			ServiceKey: os.Getenv("PERSISTENCE_SERVICE_KEY"),
		},
		Queue: QueueConfig{
			BrokerURL:        os.Getenv("QUEUE_BROKER_URL"),
			ResultBackendURL: os.Getenv("QUEUE_RESULT_BACKEND_URL"),
			MaxRetries:       getEnvInt("QUEUE_MAX_RETRIES", 3),
		},
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
