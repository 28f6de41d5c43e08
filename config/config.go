package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server reads from the environment
type Config struct {
	Port string

	FetchTimeout time.Duration
	UserAgent    string
	SourcesFile  string

	MaxTurns       int
	SessionIdleTTL time.Duration
	SweepSchedule  string

	ResponderTimeout time.Duration
	CohereAPIKey     string
	CohereModel      string
	OpenAIAPIKey     string
	LLMBaseURL       string
	LLMModel         string
	BreakerFailures  int
	BreakerCooldown  time.Duration

	// Retrieval cache; disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Exchange events; disabled when KafkaBrokers is empty
	KafkaBrokers []string
	KafkaTopic   string

	// Per-session chat rate limit; RateLimitPerMinute 0 disables it
	RateLimitPerMinute int
	RateLimitBurst     int

	LogLevel string
}

// Load builds a Config from environment variables, applying defaults.
// Callers load .env beforehand if they want it.
func Load() Config {
	return Config{
		Port: GetEnvOrDefault("PORT", DefaultPort),

		FetchTimeout: getEnvSecondsOrDefault("FETCH_TIMEOUT_SECONDS", FetchTimeout),
		UserAgent:    GetEnvOrDefault("USER_AGENT", DefaultUserAgent),
		SourcesFile:  strings.TrimSpace(os.Getenv("SOURCES_FILE")),

		MaxTurns:       getEnvIntOrDefault("MAX_TURNS", DefaultMaxTurns),
		SessionIdleTTL: getEnvMinutesOrDefault("SESSION_IDLE_TTL_MINUTES", DefaultSessionIdleTTL),
		SweepSchedule:  GetEnvOrDefault("SESSION_SWEEP_SCHEDULE", DefaultSweepSchedule),

		ResponderTimeout: getEnvSecondsOrDefault("RESPONDER_TIMEOUT_SECONDS", DefaultResponderTimeout),
		CohereAPIKey:     strings.TrimSpace(os.Getenv("COHERE_API_KEY")),
		CohereModel:      GetEnvOrDefault("COHERE_MODEL", DefaultCohereModel),
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		LLMBaseURL:       strings.TrimRight(strings.TrimSpace(os.Getenv("LLM_BASE_URL")), "/"),
		LLMModel:         GetEnvOrDefault("LLM_MODEL", DefaultOpenAIModel),
		BreakerFailures:  getEnvIntOrDefault("LLM_BREAKER_FAILURES", DefaultBreakerFailures),
		BreakerCooldown:  getEnvSecondsOrDefault("LLM_BREAKER_COOLDOWN_SECONDS", DefaultBreakerCooldown),

		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASS"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),
		CacheTTL:      getEnvSecondsOrDefault("CACHE_TTL_SECONDS", DefaultCacheTTL),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   GetEnvOrDefault("KAFKA_TOPIC", DefaultKafkaTopic),

		RateLimitPerMinute: getEnvNonNegativeOrDefault("RATE_LIMIT_PER_MINUTE", DefaultRateLimitPerMinute),
		RateLimitBurst:     getEnvIntOrDefault("RATE_LIMIT_BURST", DefaultRateLimitBurst),

		LogLevel: GetEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

// getEnvNonNegativeOrDefault is getEnvIntOrDefault that also accepts 0
func getEnvNonNegativeOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return defaultVal
}

func getEnvSecondsOrDefault(key string, defaultVal time.Duration) time.Duration {
	if secs := getEnvIntOrDefault(key, 0); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func getEnvMinutesOrDefault(key string, defaultVal time.Duration) time.Duration {
	if mins := getEnvIntOrDefault(key, 0); mins > 0 {
		return time.Duration(mins) * time.Minute
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
