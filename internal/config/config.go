package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL    string
	LogLevel       string
	ServiceName    string
	Environment    string
	Port           string
	AllowedOrigins []string
	WorkerCount    int
	BatchSize      int
	AutoMigrate    bool

	SupabaseURL string
	SupabaseKey string

	FMPAPIKey       string
	FMPBaseURL      string
	FMPRatePerSec   float64
	GeminiAPIKeys   []string
	OpenAIEndpoint  string
	OpenAIAPIKey    string
	OpenAIModel     string
	PerplexityURL   string
	PerplexityKey   string
	PerplexityModel string

	ResendAPIKey string
	ResendFrom   string
	ResendTo     []string

	AdminToken       string
	InternalBaseURL  string
	TickerCacheTTL   time.Duration
	EmailLogCapacity int
	SchedulerEnabled bool
	SyncCron         string
}

func LoadConfig() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	port := getEnv("PORT", "8080")

	allowedOrigins := []string{"*"}
	if ao := os.Getenv("ALLOWED_ORIGINS"); ao != "" {
		allowedOrigins = splitList(ao)
	}

	ttl := time.Hour
	if raw := os.Getenv("TICKER_CACHE_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TICKER_CACHE_TTL %q: %w", raw, err)
		}
		if parsed <= 0 {
			return nil, errors.New("TICKER_CACHE_TTL must be positive")
		}
		ttl = parsed
	}

	supabaseKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	if supabaseKey == "" {
		supabaseKey = os.Getenv("SUPABASE_ANON_KEY")
	}

	return &Config{
		DatabaseURL:    databaseURL,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ServiceName:    getEnv("SERVICE_NAME", "gob-api"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           port,
		AllowedOrigins: allowedOrigins,
		WorkerCount:    getInt("WORKER_COUNT", 4),
		BatchSize:      getInt("BATCH_SIZE", 25),
		AutoMigrate:    getBool("AUTO_MIGRATE", false),

		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: supabaseKey,

		FMPAPIKey:       os.Getenv("FMP_API_KEY"),
		FMPBaseURL:      getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
		FMPRatePerSec:   getFloat("FMP_RATE_LIMIT_PER_SEC", 5),
		GeminiAPIKeys:   splitList(os.Getenv("GEMINI_API_KEY")),
		OpenAIEndpoint:  getEnv("OPENAI_ENDPOINT", "https://api.openai.com/v1"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		PerplexityURL:   getEnv("PPLX_ENDPOINT", "https://api.perplexity.ai"),
		PerplexityKey:   os.Getenv("PPLX_API_KEY"),
		PerplexityModel: getEnv("PPLX_MODEL", "sonar"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		ResendFrom:   getEnv("RESEND_FROM", "Emma <emma@gobapps.com>"),
		ResendTo:     splitList(os.Getenv("RESEND_TO")),

		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		InternalBaseURL:  strings.TrimRight(getEnv("INTERNAL_API_BASE_URL", "http://localhost:"+port), "/"),
		TickerCacheTTL:   ttl,
		EmailLogCapacity: getInt("EMAIL_LOG_CAPACITY", 200),
		SchedulerEnabled: getBool("SCHEDULER_ENABLED", false),
		SyncCron:         getEnv("SYNC_CRON", "0 */30 * * * *"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
