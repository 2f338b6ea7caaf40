// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Series registry — competition tiers and the site's series selector values
// --------------------------------------------------------------------------

type SeriesConfig struct {
	Name   string
	Value  string // value of the site's series <select> option
	League string
	Level  string
}

var SeriesRegistry = map[string]SeriesConfig{
	"regular":       {Name: "KBO 정규시즌", Value: "0", League: "REGULAR", Level: "KBO1"},
	"exhibition":    {Name: "KBO 시범경기", Value: "1", League: "EXHIBITION", Level: "KBO1"},
	"playoff":       {Name: "KBO 플레이오프", Value: "5", League: "PLAYOFF", Level: "KBO1"},
	"korean_series": {Name: "KBO 한국시리즈", Value: "7", League: "KOREAN_SERIES", Level: "KBO1"},
	"futures":       {Name: "퓨처스리그", Value: "9", League: "FUTURES", Level: "KBO2"},
}

// FirstSeason is the league's founding year; no record predates it.
const FirstSeason = 1982

// --------------------------------------------------------------------------
// Table names — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	PlayersTable    = "players"
	BattingTable    = "player_season_batting"
	PitchingTable   = "player_season_pitching"
	FieldingTable   = "player_season_fielding"
	CrawlQueueTable = "crawl_queue"
	CrawlRunsTable  = "crawl_runs"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Page fetching
	FetchBaseURL    string
	FetchTimeout    time.Duration
	FetchRatePerSec float64
	FetchUserAgent  string

	// Mirror export
	MirrorPath string

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Ingestion
	Workers int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("KBO_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or KBO_DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		FetchBaseURL:    envOr("FETCH_BASE_URL", "https://www.koreabaseball.com"),
		FetchTimeout:    time.Duration(envInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		FetchRatePerSec: envFloat("FETCH_RATE_PER_SEC", 0.66),
		FetchUserAgent:  envOr("FETCH_USER_AGENT", "kbo-data/1.0"),

		MirrorPath: envOr("MIRROR_SQLITE_PATH", "kbo_mirror.db"),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		Workers: envInt("INGEST_WORKERS", 4),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
