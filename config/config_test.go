package config

import (
	"testing"
	"time"
)

func clearSiphonEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"SIPHON_PORT", "SIPHON_WORKERS", "SIPHON_MAX_CONCURRENCY", "SIPHON_TRUST_PROXY",
		"SIPHON_PROXY_LIST", "SIPHON_HEADLESS", "SIPHON_NO_SANDBOX", "SIPHON_BROWSER_BIN",
		"SIPHON_PROXY", "SIPHON_BROWSER_MAX_REQUESTS", "SIPHON_MAX_TIMEOUT_MS",
		"SIPHON_AUTH_ENABLED", "SIPHON_API_KEYS", "SIPHON_SEARXNG_URL", "SIPHON_SEARXNG_TIMEOUT_MS",
		"SIPHON_CACHE_MAX_ITEMS", "SIPHON_CACHE_TTL_MS", "SIPHON_LOG_LEVEL", "SIPHON_LOG_FORMAT",
		"SIPHON_ENABLE_METRICS",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearSiphonEnv(t)
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.MaxConcurrency != 10 {
		t.Errorf("Server.MaxConcurrency = %d, want 10", cfg.Server.MaxConcurrency)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser.Headless should default to true")
	}
	if cfg.Scraper.MaxTimeout != 30*time.Second {
		t.Errorf("Scraper.MaxTimeout = %v, want 30s", cfg.Scraper.MaxTimeout)
	}
	if !cfg.Auth.Enabled {
		t.Error("Auth.Enabled should default to true")
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
}

// TestLoadHardCapsMaxTimeout asserts that no SIPHON_MAX_TIMEOUT_MS value can
// push the effective request timeout above 60 seconds.
func TestLoadHardCapsMaxTimeout(t *testing.T) {
	clearSiphonEnv(t)
	t.Setenv("SIPHON_MAX_TIMEOUT_MS", "120000") // 120s, above the 60s ceiling

	cfg := Load()
	if cfg.Scraper.MaxTimeout != hardMaxTimeout {
		t.Errorf("Scraper.MaxTimeout = %v, want the hard cap of %v", cfg.Scraper.MaxTimeout, hardMaxTimeout)
	}
}

func TestLoadRespectsSubCeilingOverride(t *testing.T) {
	clearSiphonEnv(t)
	t.Setenv("SIPHON_MAX_TIMEOUT_MS", "5000")

	cfg := Load()
	if cfg.Scraper.MaxTimeout != 5*time.Second {
		t.Errorf("Scraper.MaxTimeout = %v, want 5s", cfg.Scraper.MaxTimeout)
	}
}

func TestLoadParsesCSVLists(t *testing.T) {
	clearSiphonEnv(t)
	t.Setenv("SIPHON_API_KEYS", "key-a, key-b,key-c")
	t.Setenv("SIPHON_PROXY_LIST", "http://p1:8080, http://p2:8080")

	cfg := Load()

	wantKeys := []string{"key-a", "key-b", "key-c"}
	if len(cfg.Auth.APIKeys) != len(wantKeys) {
		t.Fatalf("Auth.APIKeys = %v, want %v", cfg.Auth.APIKeys, wantKeys)
	}
	for i, want := range wantKeys {
		if cfg.Auth.APIKeys[i] != want {
			t.Errorf("Auth.APIKeys[%d] = %q, want %q", i, cfg.Auth.APIKeys[i], want)
		}
	}

	if len(cfg.Server.ProxyList) != 2 {
		t.Errorf("Server.ProxyList = %v, want 2 entries", cfg.Server.ProxyList)
	}
}

func TestLoadBoolOverride(t *testing.T) {
	clearSiphonEnv(t)
	t.Setenv("SIPHON_AUTH_ENABLED", "false")
	t.Setenv("SIPHON_HEADLESS", "false")

	cfg := Load()
	if cfg.Auth.Enabled {
		t.Error("expected Auth.Enabled to be false")
	}
	if cfg.Browser.Headless {
		t.Error("expected Browser.Headless to be false")
	}
}
