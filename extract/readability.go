package extract

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (characters) below
// which the readability pass is considered to have failed.
const minContentLength = 50

// MainContent runs the readability heuristic against rawHTML using
// sourceURL as the link-resolution base. On failure it retries once with
// relaxed thresholds, and on a second failure falls back to the full body
// per spec §4.9 step 3. The bool return reports whether readability (as
// opposed to the full-body fallback) produced the content.
func MainContent(rawHTML, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("extract: invalid source URL, falling back to full body", "url", sourceURL, "error", err)
		return fallbackArticle(rawHTML), false
	}

	if article, ok := tryReadability(rawHTML, parsedURL, readability.NewParser()); ok {
		return article, true
	}

	// Retry once with a relaxed parser: lower char threshold, wider
	// candidate breadth.
	relaxed := readability.NewParser()
	relaxed.CharThresholds = 100
	relaxed.NTopCandidates = 10
	if article, ok := tryReadability(rawHTML, parsedURL, relaxed); ok {
		return article, true
	}

	slog.Warn("extract: readability failed twice, falling back to full body", "url", sourceURL)
	return fallbackArticle(rawHTML), false
}

func tryReadability(rawHTML string, parsedURL *nurl.URL, parser readability.Parser) (readability.Article, bool) {
	article, err := parser.Parse(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return readability.Article{}, false
	}
	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		return readability.Article{}, false
	}
	return article, true
}

// fallbackArticle stands in for a readability.Article when extraction
// couldn't produce one, so downstream sanitisation and markdown conversion
// always have an Article to work with rather than a special-cased nil.
func fallbackArticle(rawHTML string) readability.Article {
	return readability.Article{Content: rawHTML, TextContent: rawHTML}
}
