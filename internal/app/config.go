package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr           string
	Runtime            RuntimeConfig
	APITimeout         time.Duration
	APIRetryAttempts   int
	UserAgent          string
	LogLevel           string
	LogFormat          string
	RedisURL           string
	CacheTTL           time.Duration
	CacheDisabled      bool
	FlashTTL           time.Duration
	MongoURI           string
	MongoDatabase      string
	RateLimitRPS       float64
	RateLimitBurst     int
	StrictZeroEndpoint bool
	OTLPEndpoint       string
	TraceSampleRatio   float64
}

// Side names where an API request originates.
type Side int

const (
	SideClient Side = iota
	SideServer
)

// RuntimeConfig holds the API base URLs. The server-side URL falls back to
// the public one when it is not configured.
type RuntimeConfig struct {
	APIBaseURL       string
	APIBaseURLServer string
}

func (c RuntimeConfig) BaseURLFor(side Side) string {
	if side == SideServer && c.APIBaseURLServer != "" {
		return c.APIBaseURLServer
	}
	return c.APIBaseURL
}

const defaultAPIBaseURL = "http://localhost:5231/api/v1"

func LoadConfig() Config {
	return Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":5230"),
		Runtime: RuntimeConfig{
			APIBaseURL:       normalizeBaseURL(getEnv("API_BASE_URL", defaultAPIBaseURL)),
			APIBaseURLServer: normalizeBaseURL(getEnv("API_BASE_URL_SERVER", "")),
		},
		APITimeout:         time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 15)) * time.Second,
		APIRetryAttempts:   getEnvInt("API_RETRY_ATTEMPTS", 3),
		UserAgent:          getEnv("API_USER_AGENT", "media-downloader-web/1.0"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		RedisURL:           getEnv("REDIS_URL", ""),
		CacheTTL:           time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		CacheDisabled:      getEnvBool("CACHE_DISABLED", false),
		FlashTTL:           time.Duration(getEnvInt("FLASH_TTL_SECONDS", 60)) * time.Second,
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDatabase:      getEnv("MONGO_DB", "media_downloader"),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 40),
		StrictZeroEndpoint: getEnvBool("SELECTION_STRICT_ZERO", false),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSampleRatio:   getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func normalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
