package extract

import (
	nurl "net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/sandtree/siphon/models"
)

// Pipeline runs the full C9 chain: pre-strip, parse, readability, absolute
// link rewrite, element removal, figure collapse, whitelist unwrap,
// attribute scrub, Markdown conversion, whitespace tightening, and length
// cap. It is safe for concurrent use; the markdown converter is built once.
type Pipeline struct {
	conv *converter.Converter
}

// New constructs a Pipeline with a reusable Markdown converter.
func New() *Pipeline {
	return &Pipeline{conv: newMarkdownConverter()}
}

// Options controls optional pipeline behaviour per request.
type Options struct {
	OnlyMainContent bool
	MaxLength       int
}

// Run executes the pipeline against rawHTML fetched from finalURL with the
// given response statusCode, returning the shaped ExtractionResult.
func (p *Pipeline) Run(rawHTML, finalURL string, statusCode int, opts Options) (*models.ExtractionResult, error) {
	base, err := nurl.Parse(finalURL)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrKindExtractionFailed, "invalid source URL", err)
	}

	stripped := PreStrip(rawHTML)

	var contentHTML, title, excerpt string
	if opts.OnlyMainContent {
		article, ok := MainContent(stripped, finalURL)
		contentHTML = article.Content
		if ok {
			title, excerpt = article.Title, article.Excerpt
		}
	} else {
		contentHTML = stripped
	}

	sanitized, err := Sanitize(contentHTML, base)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrKindExtractionFailed, "sanitisation failed", err)
	}

	markdown, err := ToMarkdown(p.conv, sanitized, base.Host)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrKindExtractionFailed, "markdown conversion failed", err)
	}
	markdown = TightenWhitespace(markdown)
	markdown = CapLength(markdown, opts.MaxLength)

	meta := Metadata(rawHTML, finalURL, statusCode, title, excerpt)

	return &models.ExtractionResult{
		Markdown: markdown,
		Metadata: meta,
		HTML:     sanitized,
		RawHTML:  rawHTML,
	}, nil
}

// ExtractLinks runs Links against finalURL. Link extraction is not part of
// Run, so it is only paid for when the "links" format is requested (the
// orchestrator does this by calling Links directly in shapeResult).
func (p *Pipeline) ExtractLinks(sanitizedHTML, finalURL string) models.LinksResult {
	base, err := nurl.Parse(finalURL)
	if err != nil {
		return models.LinksResult{Internal: []models.Link{}, External: []models.Link{}}
	}
	return Links(sanitizedHTML, base)
}
