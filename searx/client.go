// Package searx implements the external meta-search upstream contract:
// a GET to a JSON meta-search endpoint, with site: rewriting, domain
// exclusion, de-duplication, score-sort, and limit truncation.
package searx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sandtree/siphon/models"
)

// upstreamResult mirrors one entry of the upstream JSON response.
type upstreamResult struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Engine        string   `json:"engine"`
	Engines       []string `json:"engines"`
	Score         float64  `json:"score"`
	PublishedDate string   `json:"publishedDate"`
	Category      string   `json:"category"`
}

type upstreamResponse struct {
	Results             []upstreamResult `json:"results"`
	NumberOfResults      int              `json:"number_of_results"`
	Suggestions          []string         `json:"suggestions"`
	Answers               []string         `json:"answers"`
	UnresponsiveEngines  [][2]string      `json:"unresponsive_engines"`
}

// Client queries a SearXNG-compatible meta-search endpoint.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// New creates a Client against baseURL with the given per-call timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout, http: &http.Client{}}
}

// Options controls query post-processing.
type Options struct {
	Limit          int
	IncludeDomains []string
	ExcludeDomains []string
}

// Search queries the upstream and post-processes the result list: optional
// site: rewriting, exclude-domain filtering, de-duplication (ignoring
// trailing "/" and case), score-descending sort, and limit truncation.
func (c *Client) Search(ctx context.Context, query string, opts Options) ([]models.SearchResult, error) {
	effectiveQuery := query
	if len(opts.IncludeDomains) > 0 {
		clauses := make([]string, len(opts.IncludeDomains))
		for i, d := range opts.IncludeDomains {
			clauses[i] = "site:" + d
		}
		effectiveQuery = query + " (" + strings.Join(clauses, " OR ") + ")"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + "/search?" + url.Values{
		"q":      {effectiveQuery},
		"format": {"json"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrKindUpstreamSearchError, "failed to build search request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrKindUpstreamSearchError, "search upstream unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewScrapeError(models.ErrKindUpstreamSearchError,
			fmt.Sprintf("search upstream returned HTTP %d", resp.StatusCode), nil)
	}

	var parsed upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, models.NewScrapeError(models.ErrKindUpstreamSearchError, "failed to decode search response", err)
	}

	results := dedupe(filterExcluded(parsed.Results, opts.ExcludeDomains))

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	limit := opts.Limit
	if limit <= 0 || limit > 20 {
		limit = 20
	}
	if len(results) > limit {
		results = results[:limit]
	}

	out := make([]models.SearchResult, len(results))
	for i, r := range results {
		category := r.Category
		out[i] = models.SearchResult{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Content,
			Position:    i + 1,
			Category:    category,
		}
	}
	return out, nil
}

func filterExcluded(results []upstreamResult, excludeDomains []string) []upstreamResult {
	if len(excludeDomains) == 0 {
		return results
	}
	out := make([]upstreamResult, 0, len(results))
	for _, r := range results {
		u, err := url.Parse(r.URL)
		if err != nil {
			out = append(out, r)
			continue
		}
		host := strings.ToLower(u.Hostname())
		excluded := false
		for _, d := range excludeDomains {
			if strings.HasSuffix(host, strings.ToLower(d)) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, r)
		}
	}
	return out
}

func dedupe(results []upstreamResult) []upstreamResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]upstreamResult, 0, len(results))
	for _, r := range results {
		key := strings.ToLower(strings.TrimRight(r.URL, "/"))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
