package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandtree/siphon/browser"
	"github.com/sandtree/siphon/models"
	"github.com/sandtree/siphon/resultcache"
)

// Health returns a handler for GET /healthz.
func Health(pool *browser.Pool, cache *resultcache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       "healthy",
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			BrowserState: pool.State(),
			CacheSize:    cache.Size(),
			Version:      "0.1.0",
		})
	}
}
