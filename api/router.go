// Package api assembles the Gin HTTP surface: /scrape, /search, /healthz,
// and (when enabled) /metrics.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sandtree/siphon/api/handler"
	"github.com/sandtree/siphon/api/middleware"
	"github.com/sandtree/siphon/browser"
	"github.com/sandtree/siphon/config"
	"github.com/sandtree/siphon/orchestrate"
	"github.com/sandtree/siphon/resultcache"
	"github.com/sandtree/siphon/searx"
)

// defaultRateLimit and defaultRateBurst bound per-identity request rate;
// spec.md's settings list does not expose these, so they are fixed.
const (
	defaultRateLimit = 5.0
	defaultRateBurst = 10
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	Protected: Auth (if enabled) → RateLimit
//
// /healthz and /metrics are intentionally outside auth so monitoring
// probes always work.
func NewRouter(o *orchestrate.Orchestrator, searchClient *searx.Client, pool *browser.Pool, cache *resultcache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	if !cfg.Server.TrustProxy {
		_ = r.SetTrustedProxies(nil)
	}

	r.GET("/healthz", handler.Health(pool, cache, startTime))

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(defaultRateLimit, defaultRateBurst))

	protected.POST("/scrape", handler.Scrape(o))
	protected.POST("/search", handler.Search(o, searchClient))

	return r
}
