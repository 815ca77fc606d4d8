// Package orchestrate wires the components together: preflight the URL,
// consult the cache, run the fast fetcher then fall back to the browser
// fetcher, extract, cache the result, and shape the response (C10).
package orchestrate

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/sandtree/siphon/browser"
	"github.com/sandtree/siphon/extract"
	"github.com/sandtree/siphon/fetch"
	"github.com/sandtree/siphon/fingerprint"
	"github.com/sandtree/siphon/limiter"
	"github.com/sandtree/siphon/metrics"
	"github.com/sandtree/siphon/models"
	"github.com/sandtree/siphon/resultcache"
	"github.com/sandtree/siphon/ssrf"
)

// Orchestrator owns the fetch/extract pipeline's glue logic.
type Orchestrator struct {
	cache    *resultcache.Cache
	limiter  *limiter.Limiter
	browsers *browser.Pool
	fast     *fetch.FastFetcher
	bfetch   *fetch.BrowserFetcher
	pipeline *extract.Pipeline
	resolver ssrf.Resolver
	metrics  *metrics.Metrics

	maxTimeout time.Duration
	maxLength  int
}

// Config controls timeout/length caps applied to every scrape.
type Config struct {
	MaxTimeout time.Duration
	MaxLength  int
}

// New assembles an Orchestrator from its component dependencies. m may be
// nil, in which case metrics recording is skipped.
func New(cache *resultcache.Cache, lim *limiter.Limiter, browsers *browser.Pool, m *metrics.Metrics, cfg Config) *Orchestrator {
	return &Orchestrator{
		cache:      cache,
		limiter:    lim,
		browsers:   browsers,
		fast:       fetch.NewFastFetcher(),
		bfetch:     fetch.NewBrowserFetcher(),
		pipeline:   extract.New(),
		resolver:   &net.Resolver{},
		metrics:    m,
		maxTimeout: cfg.MaxTimeout,
		maxLength:  cfg.MaxLength,
	}
}

// cacheInput is the structured input hashed into a fingerprint; field
// order does not matter since Key sorts top-level keys.
type cacheInput struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

// Scrape runs the full C10 pipeline for one request.
func (o *Orchestrator) Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ExtractionResult, error) {
	start := time.Now()
	req.Defaults()

	timeout := o.clampTimeout(req.TimeoutMs)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pre := ssrf.Preflight(ctx, o.resolver, req.URL)
	if !pre.OK {
		o.metrics.ScrapeOutcome(pre.Reason)
		return nil, models.NewScrapeError(pre.Reason, "blocked by SSRF guard", nil)
	}

	key := fingerprint.Key("scrape", cacheInput{
		URL:             req.URL,
		Formats:         req.SortedFormats(),
		OnlyMainContent: *req.OnlyMainContent,
	})

	if hit, ok := o.cache.Get(key); ok {
		o.metrics.CacheResult(true)
		o.metrics.ScrapeOutcome("ok")
		o.metrics.ObserveScrapeDuration(time.Since(start))
		return shapeResult(hit.(*models.ExtractionResult), req), nil
	}
	o.metrics.CacheResult(false)

	result, err := o.limiter.Run(ctx, func() (any, error) {
		return o.fetchAndExtract(ctx, req)
	})
	if err != nil {
		o.metrics.ScrapeOutcome(kindOf(err))
		return nil, err
	}

	extraction := result.(*models.ExtractionResult)
	o.cache.Set(key, extraction)
	o.metrics.ScrapeOutcome("ok")
	o.metrics.ObserveScrapeDuration(time.Since(start))
	return shapeResult(extraction, req), nil
}

func kindOf(err error) string {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se.Kind
	}
	return models.ErrKindInternal
}

func (o *Orchestrator) fetchAndExtract(ctx context.Context, req *models.ScrapeRequest) (*models.ExtractionResult, error) {
	opts := extract.Options{OnlyMainContent: *req.OnlyMainContent, MaxLength: o.maxLength}

	fastTimeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < fastTimeout {
			fastTimeout = remaining
		}
	}

	if fast, err := o.fast.Fetch(ctx, fastTimeout, req.URL); err == nil && fast != nil {
		o.metrics.FetchTier("fast")
		return o.pipeline.Run(fast.HTML, fast.FinalURL, fast.StatusCode, opts)
	}

	b, err := o.browsers.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	navResult, err := o.bfetch.Fetch(ctx, b, req.URL)
	if err != nil {
		return nil, err
	}

	o.metrics.FetchTier("browser")
	return o.pipeline.Run(navResult.HTML, navResult.FinalURL, navResult.StatusCode, opts)
}

func (o *Orchestrator) clampTimeout(requestedMs int) time.Duration {
	if requestedMs <= 0 {
		return o.maxTimeout
	}
	requested := time.Duration(requestedMs) * time.Millisecond
	if requested > o.maxTimeout {
		return o.maxTimeout
	}
	return requested
}

// shapeResult attaches only the optional outputs the request asked for.
func shapeResult(cached *models.ExtractionResult, req *models.ScrapeRequest) *models.ExtractionResult {
	out := &models.ExtractionResult{
		Markdown: cached.Markdown,
		Metadata: cached.Metadata,
	}
	if req.WantsFormat(models.FormatHTML) {
		out.HTML = cached.HTML
	}
	if req.WantsFormat(models.FormatRawHTML) {
		out.RawHTML = cached.RawHTML
	}
	if req.WantsFormat(models.FormatLinks) {
		base, err := url.Parse(cached.Metadata.SourceURL)
		if err == nil {
			links := extract.Links(cached.HTML, base)
			out.Links = &links
		}
	}
	return out
}
