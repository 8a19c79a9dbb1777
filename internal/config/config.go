package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port         string
	DatabasePath string
	JWTSecret    string
	TokenExpiry  time.Duration

	// CORS configuration
	AllowedOrigins string

	// Notification sweep configuration
	NotificationCron string // standard 5-field cron expression, UTC
	DueSoonDays      int    // tasks due within this many days get a "due soon" notification
	SweepEnabled     bool
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "5000"),
		DatabasePath: getEnv("DATABASE_PATH", "taskmaster.db"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenExpiry:  getDurationEnv("TOKEN_EXPIRY", 30*24*time.Hour),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),

		NotificationCron: getEnv("NOTIFICATION_CRON", "0 9 * * *"),
		DueSoonDays:      getIntEnv("DUE_SOON_DAYS", 3),
		SweepEnabled:     getBoolEnv("NOTIFICATION_SWEEP_ENABLED", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
