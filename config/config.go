package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds every setting the fulfilment service needs
// (DB, cache, security, rate limiting, legacy integration).
type Config struct {
	// General
	Port        string
	Environment string
	LogLevel    string

	// Database (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr string
	CacheTTL  time.Duration

	// Security (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Legacy store manager integration
	LegacyStoreManagerURL string
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. General
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Database (PostgreSQL)
		// mustGetEnv keeps the service from starting without DB credentials
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 3. Cache (Redis)
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  getDurationEnv("CACHE_TTL_SEC", 60) * time.Second,

		// 4. Security (JWT)
		JWTSecretKey: mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,

		// 5. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,

		// 6. Legacy store manager (post-commit notifications)
		LegacyStoreManagerURL: getEnv("LEGACY_STORE_MANAGER_URL", "http://localhost:9090"),
	}

	return cfg
}

// Helper functions

// getEnv reads an environment variable or falls back to a default value.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv reads an environment variable, fatal when missing.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Configuration error: environment variable %s must be set.", key)
	return ""
}

// getDurationEnv reads a numeric environment variable as a time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Warning: value of %s ('%s') is not a valid integer. Using default (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv reads a numeric environment variable as an int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Warning: value of %s ('%s') is not a valid integer. Using default (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
