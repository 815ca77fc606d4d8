package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sandtree/siphon/models"
	"github.com/sandtree/siphon/orchestrate"
	"github.com/sandtree/siphon/searx"
)

// Search returns a handler for POST /search.
func Search(o *orchestrate.Orchestrator, client *searx.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SearchResponse{
				Success: false,
				Error:   models.ErrKindInvalidInput,
				Detail:  err.Error(),
			})
			return
		}

		data, err := o.Search(c.Request.Context(), client, &req)
		if err != nil {
			respondSearchError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SearchResponse{Success: true, Data: data})
	}
}

func respondSearchError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrKindInternal, err.Error(), err)
	}

	detail := scrapeErr.ToDetail()
	c.JSON(models.StatusFor(scrapeErr.Kind), models.SearchResponse{
		Success: false,
		Error:   detail.Error,
		Detail:  detail.Detail,
	})
}
