package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string

	// HTTPTimeout bounds every outbound provider call. Upstream calls have
	// no retries, so this is the only protection against a hanging upstream.
	HTTPTimeout time.Duration

	// Search-history retention.
	HistoryDBPath        string
	HistoryMaxEntries    int           // max stored searches (0 = unlimited)
	HistoryMaxAge        time.Duration // max age of stored searches (0 = unlimited)
	HistoryPruneInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.HistoryDBPath = getenvDefault("HISTORY_DB_PATH", "data/search_history.db")
	cfg.HistoryMaxEntries = getenvInt("HISTORY_MAX_ENTRIES", 200)

	maxAgeStr := getenvDefault("HISTORY_MAX_AGE", "720h") // 30 days
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_MAX_AGE: %w", err)
	}
	cfg.HistoryMaxAge = maxAge

	pruneStr := getenvDefault("HISTORY_PRUNE_INTERVAL", "1h")
	prune, err := time.ParseDuration(pruneStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_PRUNE_INTERVAL: %w", err)
	}
	cfg.HistoryPruneInterval = prune

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
