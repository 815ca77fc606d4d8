package orchestrate

import (
	"context"
	"sync"

	"github.com/sandtree/siphon/models"
	"github.com/sandtree/siphon/searx"
)

// Searcher queries a meta-search upstream for result URLs.
type Searcher interface {
	Search(ctx context.Context, query string, opts searx.Options) ([]models.SearchResult, error)
}

// Search runs the upstream query and, when req.ScrapeOptions is set, fans
// out a Scrape per result URL using the same cache and concurrency limiter
// as direct /scrape calls. A per-URL scrape failure downgrades that result
// to its bare search fields rather than failing the whole request.
func (o *Orchestrator) Search(ctx context.Context, s Searcher, req *models.SearchRequest) (*models.SearchData, error) {
	results, err := s.Search(ctx, req.Query, searx.Options{Limit: req.Limit, IncludeDomains: req.Sources})
	o.metrics.SearchCall(err == nil)
	if err != nil {
		return nil, err
	}

	if req.ScrapeOptions == nil {
		return &models.SearchData{Web: results}, nil
	}

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o.enrichResult(ctx, &results[i], req.ScrapeOptions)
		}(i)
	}
	wg.Wait()

	return &models.SearchData{Web: results}, nil
}

func (o *Orchestrator) enrichResult(ctx context.Context, result *models.SearchResult, opts *models.SearchScrapeOptions) {
	scrapeReq := &models.ScrapeRequest{
		URL:             result.URL,
		Formats:         opts.Formats,
		OnlyMainContent: opts.OnlyMainContent,
	}

	extraction, err := o.Scrape(ctx, scrapeReq)
	if err != nil {
		return
	}

	result.Markdown = extraction.Markdown
	result.HTML = extraction.HTML
	result.RawHTML = extraction.RawHTML
	result.Links = extraction.Links
	if extraction.Metadata.Title != "" {
		result.Title = extraction.Metadata.Title
	}
	if extraction.Metadata.Description != "" {
		result.Description = extraction.Metadata.Description
	}
}
