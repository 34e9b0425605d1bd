package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Port string
	// PGURL enables the Postgres market and fund caches when set
	PGURL string
	// AVKey enables AlphaVantage market refresh and fund lookups when set
	AVKey string
	// AVRequestsPerMinute throttles AlphaVantage calls; 0 disables the limit
	AVRequestsPerMinute int
	StoragePath         string

	MarketCacheTTL time.Duration
	MarketWorkers  int
	MarketSegments []string
	MarketOrder    []string
	// MarketRefreshSchedule reloads stale segments while running; empty
	// disables it
	MarketRefreshSchedule string

	FundCacheTTL time.Duration
	LogLevel     log.Level
}

// Load reads configuration from environment variables. A .env file in the
// working directory is read first; variables already set in the shell win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	storagePath := os.Getenv("STORAGE_PATH")
	if storagePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("STORAGE_PATH is unset and the home directory is unknown: %w", err)
		}
		storagePath = filepath.Join(home, ".holdings-aggregator")
	}

	ttlDays, err := intEnv("MARKET_CACHE_TTL_DAYS", 31)
	if err != nil {
		return nil, err
	}
	if ttlDays <= 0 {
		return nil, fmt.Errorf("MARKET_CACHE_TTL_DAYS must be positive, got %d", ttlDays)
	}

	workers, err := intEnv("MARKET_WORKERS", 8)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		return nil, fmt.Errorf("MARKET_WORKERS must be positive, got %d", workers)
	}

	avRate, err := intEnv("AV_REQUESTS_PER_MINUTE", 75)
	if err != nil {
		return nil, err
	}
	if avRate < 0 {
		return nil, fmt.Errorf("AV_REQUESTS_PER_MINUTE must not be negative, got %d", avRate)
	}

	schedule := os.Getenv("MARKET_REFRESH_SCHEDULE")
	switch strings.ToLower(schedule) {
	case "":
		schedule = "@daily"
	case "off", "none":
		schedule = ""
	}

	fundTTL := 1 * time.Hour
	if v := os.Getenv("FUND_CACHE_TTL"); v != "" {
		fundTTL, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FUND_CACHE_TTL %q: %w", v, err)
		}
	}

	level := log.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err = log.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	return &Config{
		Port:                  port,
		PGURL:                 os.Getenv("PG_URL"),
		AVKey:                 os.Getenv("AV_KEY"),
		AVRequestsPerMinute:   avRate,
		StoragePath:           storagePath,
		MarketCacheTTL:        time.Duration(ttlDays) * 24 * time.Hour,
		MarketWorkers:         workers,
		MarketSegments:        listEnv("MARKET_SEGMENTS", "NASDAQ,NYSE"),
		MarketOrder:           listEnv("MARKET_ORDER", "static,exchanges"),
		MarketRefreshSchedule: schedule,
		FundCacheTTL:          fundTTL,
		LogLevel:              level,
	}, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// listEnv splits a comma-separated variable, dropping empty items
func listEnv(key, def string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
