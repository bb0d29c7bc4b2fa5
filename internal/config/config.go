package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the console
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string

	// External voting API
	APIBaseURL string
	APITimeout time.Duration

	// Token store; empty RedisURL selects the in-memory store
	RedisURL      string
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool

	// Scheme from X-Forwarded-Proto for the same-origin check
	TrustForwardedProto bool

	PollInterval   time.Duration
	SearchDebounce time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5001"), "/"),
		RedisURL:       getEnv("REDIS_URL", ""),
		SessionCookie:  getEnv("SESSION_COOKIE", "votedesk_sid"),
		CookieSecure:   getBoolEnv("COOKIE_SECURE", false),

		TrustForwardedProto: getBoolEnv("TRUST_FORWARDED_PROTO", false),
	}

	var err error
	if cfg.APITimeout, err = getDurationEnv("API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDurationEnv("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getDurationEnv("POLL_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = getDurationEnv("SEARCH_DEBOUNCE", 300*time.Millisecond); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var problems []string
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		problems = append(problems, "API_BASE_URL must be an http(s) URL")
	}
	if c.APITimeout <= 0 {
		problems = append(problems, "API_TIMEOUT must be positive")
	}
	if c.PollInterval <= 0 {
		problems = append(problems, "POLL_INTERVAL must be positive")
	}
	if c.SessionCookie == "" {
		problems = append(problems, "SESSION_COOKIE must not be empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment reports a non-production environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
