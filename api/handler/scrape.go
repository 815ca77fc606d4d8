package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sandtree/siphon/models"
	"github.com/sandtree/siphon/orchestrate"
)

// Scrape returns a handler for POST /scrape.
func Scrape(o *orchestrate.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error:   models.ErrKindInvalidInput,
				Detail:  err.Error(),
			})
			return
		}

		result, err := o.Scrape(c.Request.Context(), &req)
		if err != nil {
			respondScrapeError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ScrapeResponse{Success: true, Data: result})
	}
}

// respondScrapeError maps a ScrapeError to the status table in
// models.StatusFor and writes a structured JSON error response.
func respondScrapeError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrKindInternal, err.Error(), err)
	}

	detail := scrapeErr.ToDetail()
	c.JSON(models.StatusFor(scrapeErr.Kind), models.ScrapeResponse{
		Success: false,
		Error:   detail.Error,
		Detail:  detail.Detail,
	})
}
