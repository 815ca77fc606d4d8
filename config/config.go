// Package config loads siphon's environment-variable configuration, with
// an optional .env file loaded best-effort before reading the process
// environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// hardMaxTimeout is the absolute ceiling on any request's timeout,
// regardless of what MaxTimeoutMs is configured to.
const hardMaxTimeout = 60 * time.Second

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Browser BrowserConfig
	Scraper ScraperConfig
	Auth    AuthConfig
	Searx   SearxConfig
	Cache   CacheConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Port           int      // default: 8080
	Workers        int      // default: 0
	MaxConcurrency int      // default: 10
	TrustProxy     bool     // default: false
	ProxyList      []string // round-robin outbound proxies, optional
}

// BrowserConfig controls the Rod browser pool.
type BrowserConfig struct {
	Headless           bool // default: true
	NoSandbox          bool // default: false
	BrowserBin         string
	DefaultProxy       string
	MaxRequests        int // requests served before a browser instance recycles; default: 50
}

// ScraperConfig controls scraping timeouts.
type ScraperConfig struct {
	MaxTimeout time.Duration // hard-capped at 60s regardless of env override
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool
	APIKeys []string
}

// SearxConfig controls the meta-search upstream client.
type SearxConfig struct {
	URL     string
	Timeout time.Duration
}

// CacheConfig controls the scrape result cache.
type CacheConfig struct {
	MaxItems int
	TTL      time.Duration
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// MetricsConfig controls the Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is loaded first, best-effort.
func Load() *Config {
	_ = godotenv.Load()

	maxTimeout := envDurationOr("SIPHON_MAX_TIMEOUT_MS", 30*time.Second)
	if maxTimeout > hardMaxTimeout {
		maxTimeout = hardMaxTimeout
	}

	return &Config{
		Server: ServerConfig{
			Port:           envIntOr("SIPHON_PORT", 8080),
			Workers:        envIntOr("SIPHON_WORKERS", 0),
			MaxConcurrency: envIntOr("SIPHON_MAX_CONCURRENCY", 10),
			TrustProxy:     envBoolOr("SIPHON_TRUST_PROXY", false),
			ProxyList:      envSliceOr("SIPHON_PROXY_LIST", nil),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("SIPHON_HEADLESS", true),
			NoSandbox:    envBoolOr("SIPHON_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SIPHON_BROWSER_BIN"),
			DefaultProxy: os.Getenv("SIPHON_PROXY"),
			MaxRequests:  envIntOr("SIPHON_BROWSER_MAX_REQUESTS", 50),
		},
		Scraper: ScraperConfig{
			MaxTimeout: maxTimeout,
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SIPHON_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SIPHON_API_KEYS", nil),
		},
		Searx: SearxConfig{
			URL:     envOr("SIPHON_SEARXNG_URL", "http://localhost:8888"),
			Timeout: envDurationOr("SIPHON_SEARXNG_TIMEOUT_MS", 10*time.Second),
		},
		Cache: CacheConfig{
			MaxItems: envIntOr("SIPHON_CACHE_MAX_ITEMS", 1000),
			TTL:      envDurationOr("SIPHON_CACHE_TTL_MS", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("SIPHON_LOG_LEVEL", "info"),
			Format: envOr("SIPHON_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: envBoolOr("SIPHON_ENABLE_METRICS", true),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envDurationOr parses key as milliseconds (matching the _MS env var
// naming convention) and falls back to fallback if unset or invalid.
func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
