// Package config handles loading application configuration from environment variables.
// All settings have sensible defaults for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application settings loaded from environment variables.
type Config struct {
	Port               int
	PortMaxAttempts    int
	HotSongsTTL        time.Duration
	HotSongsKeyword    string
	PollInterval       time.Duration
	ProbeTimeout       time.Duration
	CatalogTimeout     time.Duration
	RateLimitPerMinute int
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables, using defaults where not set.
func Load() *Config {
	return &Config{
		Port:               getIntEnv("PORT", 3000),
		PortMaxAttempts:    getIntEnv("PORT_MAX_ATTEMPTS", 10),
		HotSongsTTL:        getDurationEnv("HOT_SONGS_TTL", 5*time.Minute),
		HotSongsKeyword:    getEnv("HOT_SONGS_KEYWORD", "popular music"),
		PollInterval:       getDurationEnv("POLL_INTERVAL", time.Second),
		ProbeTimeout:       getDurationEnv("PROBE_TIMEOUT", 10*time.Second),
		CatalogTimeout:     getDurationEnv("CATALOG_TIMEOUT", 10*time.Second),
		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS"),
	}
}

func getStringSliceEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var result []string
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
