// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Upstream aggregator settings
	UpstreamAPIKey   string
	UpstreamBaseURL  string
	UpstreamReferer  string
	UpstreamTitle    string
	UpstreamTimeout  time.Duration
	RetryBaseDelay   time.Duration
	ContextAttempts  int
	DraftAttempts    int
	RouteAttempts    int
	FallbackPerCycle int

	// Model pool settings
	ConfigModels     []string
	FallbackModel    string
	PoolSize         int
	PoolTTL          time.Duration
	DiscoveryEnabled bool

	// Site owner identity (recipient resolution, short-circuit facts)
	OwnerName     string
	OwnerEmail    string
	OwnerBirthday string // YYYY-MM-DD
	OwnerLocation string
	OwnerTitle    string

	// Social snapshot source (optional)
	SnapshotURL string

	// NATS settings (exchange recording; optional)
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings (admin surface)
	JWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// CORS
	AllowedOrigins []string

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Upstream
		UpstreamAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
		UpstreamBaseURL:  getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		UpstreamReferer:  getEnv("UPSTREAM_REFERER", "https://danielwern.dev"),
		UpstreamTitle:    getEnv("UPSTREAM_TITLE", "Portfolio Assistant"),
		UpstreamTimeout:  getDurationEnv("UPSTREAM_TIMEOUT", 45*time.Second),
		RetryBaseDelay:   getDurationEnv("RETRY_BASE_DELAY", 750*time.Millisecond),
		ContextAttempts:  getIntEnv("CONTEXT_ATTEMPTS", 4),
		DraftAttempts:    getIntEnv("DRAFT_ATTEMPTS", 3),
		RouteAttempts:    getIntEnv("ROUTE_ATTEMPTS", 3),
		FallbackPerCycle: getIntEnv("FALLBACKS_PER_CYCLE", 3),

		// Model pool
		ConfigModels:     getListEnv("ASSISTANT_MODELS", nil),
		FallbackModel:    getEnv("FALLBACK_MODEL", "meta-llama/llama-3.3-70b-instruct:free"),
		PoolSize:         getIntEnv("MODEL_POOL_SIZE", 8),
		PoolTTL:          getDurationEnv("MODEL_POOL_TTL", 10*time.Minute),
		DiscoveryEnabled: getBoolEnv("MODEL_DISCOVERY_ENABLED", true),

		// Owner
		OwnerName:     getEnv("OWNER_NAME", "Daniel Wern"),
		OwnerEmail:    getEnv("OWNER_EMAIL", "daniel@danielwern.dev"),
		OwnerBirthday: getEnv("OWNER_BIRTHDAY", "1994-03-12"),
		OwnerLocation: getEnv("OWNER_LOCATION", "Berlin, Germany"),
		OwnerTitle:    getEnv("OWNER_TITLE", "Software Engineer"),

		// Social snapshot
		SnapshotURL: getEnv("PROFILE_SNAPSHOT_URL", ""),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// CORS
		AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", nil),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
