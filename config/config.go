package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Environment string

	// Redis configuration, an empty URL disables flash messages and rate limiting
	RedisURL string

	// Session cookie holding the auth token
	AuthCookieName   string
	AuthCookieSecure bool

	// Flash messages
	FlashTTL time.Duration

	// Write endpoint rate limiting
	WriteRateLimit  int
	WriteRateWindow time.Duration

	// Listings
	RelatedLimit int

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	// .env is optional
	_ = godotenv.Load()

	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Session
		AuthCookieName:   getEnv("AUTH_COOKIE_NAME", "pb_auth"),
		AuthCookieSecure: getEnvAsBool("AUTH_COOKIE_SECURE", false),

		// Flash
		FlashTTL: getEnvAsDuration("FLASH_TTL", "5m"),

		// Rate limiting
		WriteRateLimit:  getEnvAsInt("WRITE_RATE_LIMIT", 30),
		WriteRateWindow: getEnvAsDuration("WRITE_RATE_WINDOW", "1m"),

		RelatedLimit: getEnvAsInt("RELATED_LIMIT", 4),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
