package models

// Metadata is the page metadata attached to every successful extraction.
type Metadata struct {
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Language      string   `json:"language,omitempty"`
	SourceURL     string   `json:"sourceURL"`
	StatusCode    int      `json:"statusCode"`
	Author        string   `json:"author,omitempty"`
	SiteName      string   `json:"siteName,omitempty"`
	OGType        string   `json:"ogType,omitempty"`
	OGUrl         string   `json:"ogUrl,omitempty"`
	Image         string   `json:"image,omitempty"`
	PublishedTime string   `json:"publishedTime,omitempty"`
	ModifiedTime  string   `json:"modifiedTime,omitempty"`
	CanonicalURL  string   `json:"canonicalURL,omitempty"`
	Favicon       string   `json:"favicon,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Generator     string   `json:"generator,omitempty"`
}

// Link is a single anchor extracted from a page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text,omitempty"`
}

// LinksResult splits extracted anchors by whether they stay on the source host.
type LinksResult struct {
	Internal []Link `json:"internal"`
	External []Link `json:"external"`
}

// ExtractionResult is the data payload of a successful scrape. Markdown is
// non-empty iff extraction succeeded.
type ExtractionResult struct {
	Markdown string      `json:"markdown"`
	Metadata Metadata    `json:"metadata"`
	HTML     string      `json:"html,omitempty"`
	RawHTML  string      `json:"rawHtml,omitempty"`
	Links    *LinksResult `json:"links,omitempty"`
}

// ScrapeResponse is the top-level envelope returned by POST /scrape.
type ScrapeResponse struct {
	Success bool              `json:"success"`
	Data    *ExtractionResult `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Detail  string            `json:"detail,omitempty"`
}

// SearchResult is one entry of a search response, optionally carrying a
// fetched-and-converted extraction when scrapeOptions requested it.
type SearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
	Category    string `json:"category,omitempty"`

	Markdown string       `json:"markdown,omitempty"`
	HTML     string       `json:"html,omitempty"`
	RawHTML  string       `json:"rawHtml,omitempty"`
	Links    *LinksResult `json:"links,omitempty"`
}

// SearchData is the "data" payload of a search response.
type SearchData struct {
	Web []SearchResult `json:"web"`
}

// SearchResponse is the top-level envelope returned by POST /search.
type SearchResponse struct {
	Success bool        `json:"success"`
	Data    *SearchData `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	BrowserState string `json:"browserState"`
	CacheSize    int    `json:"cacheSize"`
	Version      string `json:"version"`
}
