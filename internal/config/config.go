// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Version is the release version reported by the health endpoint, the MCP
// server implementation info, and the outbound client-identification header.
const Version = "1.1.0"

// Retry policy defaults for calls against the Upstage API.
const (
	DefaultMaxAttemptsValue  = 3
	DefaultRetryBaseDelayMs  = 1000
	DefaultRetryMaxDelayMs   = 4000
	DefaultRequestTimeoutMs  = 300000
	DefaultHTTPKeepaliveMs   = 15000
	DefaultCacheMaxItems     = 128
	DefaultScanWorkersValue  = 4
	DefaultSearchLimitValue  = 20
	DefaultQueryLimitValue   = 50
)

// Config holds all configuration for the MCP server.
type Config struct {
	APIKey        string        // UPSTAGE_API_KEY, required
	BaseURL       string        // UPSTAGE_BASE_URL, default "https://api.upstage.ai/v1"
	OutputDir     string        // UPSTAGE_OUTPUT_DIR, default "<user-config-dir>/upstage-mcp/outputs"
	ParseModel    string        // UPSTAGE_PARSE_MODEL, default "document-parse"
	ExtractModel  string        // UPSTAGE_EXTRACT_MODEL, default "information-extract"
	ClassifyModel string        // UPSTAGE_CLASSIFY_MODEL, default "document-classify"

	RequestTimeout time.Duration // UPSTAGE_REQUEST_TIMEOUT_MS, default 300000ms (5m per attempt)
	MaxAttempts    int           // UPSTAGE_MAX_ATTEMPTS, default 3
	RetryBaseDelay time.Duration // UPSTAGE_RETRY_BASE_DELAY_MS, default 1000ms
	RetryMaxDelay  time.Duration // UPSTAGE_RETRY_MAX_DELAY_MS, default 4000ms

	// Saved-result store
	CacheMaxItems      int           // RESULT_CACHE_MAX_ITEMS, default 128
	ScanWorkers        int           // RESULT_SCAN_WORKERS, default 4
	FreshnessThreshold time.Duration // RESULT_FRESHNESS_MS, default 2000ms
	DefaultSearchLimit int           // DEFAULT_SEARCH_LIMIT, default 20
	DefaultQueryLimit  int           // DEFAULT_QUERY_LIMIT, default 50

	// HTTP transport
	HTTPKeepalive time.Duration // HTTP_KEEPALIVE_MS, default 15000ms

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
// Values from .env and .env.local are merged first without overriding
// variables already present in the process environment.
func Load() *Config {
	loadDotEnv()

	return &Config{
		APIKey:        getEnvString("UPSTAGE_API_KEY", ""),
		BaseURL:       getEnvString("UPSTAGE_BASE_URL", "https://api.upstage.ai/v1"),
		OutputDir:     getEnvString("UPSTAGE_OUTPUT_DIR", defaultOutputDir()),
		ParseModel:    getEnvString("UPSTAGE_PARSE_MODEL", "document-parse"),
		ExtractModel:  getEnvString("UPSTAGE_EXTRACT_MODEL", "information-extract"),
		ClassifyModel: getEnvString("UPSTAGE_CLASSIFY_MODEL", "document-classify"),

		RequestTimeout: getEnvDurationMs("UPSTAGE_REQUEST_TIMEOUT_MS", DefaultRequestTimeoutMs),
		MaxAttempts:    getEnvInt("UPSTAGE_MAX_ATTEMPTS", DefaultMaxAttemptsValue),
		RetryBaseDelay: getEnvDurationMs("UPSTAGE_RETRY_BASE_DELAY_MS", DefaultRetryBaseDelayMs),
		RetryMaxDelay:  getEnvDurationMs("UPSTAGE_RETRY_MAX_DELAY_MS", DefaultRetryMaxDelayMs),

		CacheMaxItems:      getEnvInt("RESULT_CACHE_MAX_ITEMS", DefaultCacheMaxItems),
		ScanWorkers:        getEnvInt("RESULT_SCAN_WORKERS", DefaultScanWorkersValue),
		FreshnessThreshold: getEnvDurationMs("RESULT_FRESHNESS_MS", 2000),
		DefaultSearchLimit: getEnvInt("DEFAULT_SEARCH_LIMIT", DefaultSearchLimitValue),
		DefaultQueryLimit:  getEnvInt("DEFAULT_QUERY_LIMIT", DefaultQueryLimitValue),

		HTTPKeepalive: getEnvDurationMs("HTTP_KEEPALIVE_MS", DefaultHTTPKeepaliveMs),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// Validate checks the invariants that make the server unable to start.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("UPSTAGE_API_KEY is not set")
	}
	return nil
}

// loadDotEnv merges .env then .env.local into the process environment.
// Already-set variables always win over file values.
func loadDotEnv() {
	for _, name := range []string{".env", ".env.local"} {
		values, err := godotenv.Read(name)
		if err != nil {
			continue
		}
		for k, v := range values {
			if _, exists := os.LookupEnv(k); !exists {
				os.Setenv(k, v)
			}
		}
	}
}

func defaultOutputDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "upstage-mcp", "outputs")
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
