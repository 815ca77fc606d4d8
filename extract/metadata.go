package extract

import (
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sandtree/siphon/models"
)

// Metadata indexes every <meta> tag by name|property|itemprop (lowercased)
// and assembles the fields listed in spec §3/§4.9. articleTitle/Excerpt are
// the readability-extracted title/excerpt, used preferentially.
func Metadata(rawHTML, finalURL string, statusCode int, articleTitle, articleExcerpt string) models.Metadata {
	m := models.Metadata{SourceURL: finalURL, StatusCode: statusCode}
	if m.StatusCode == 0 {
		m.StatusCode = 200
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		m.Title = articleTitle
		m.Description = articleExcerpt
		return m
	}

	index := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return
		}
		for _, attr := range []string{"name", "property", "itemprop"} {
			if key, ok := s.Attr(attr); ok && key != "" {
				index[strings.ToLower(key)] = content
			}
		}
	})

	m.Title = firstNonEmpty(articleTitle, index["og:title"], strings.TrimSpace(doc.Find("title").First().Text()))
	m.Description = firstNonEmpty(articleExcerpt, index["og:description"], index["description"])
	m.Language = firstNonEmpty(htmlLang(doc), index["og:locale"])
	m.Author = firstNonEmpty(index["author"], index["article:author"])
	m.SiteName = index["og:site_name"]
	m.OGType = index["og:type"]
	m.OGUrl = index["og:url"]
	m.Image = index["og:image"]
	m.PublishedTime = firstNonEmpty(index["article:published_time"], index["og:published_time"])
	m.ModifiedTime = firstNonEmpty(index["article:modified_time"], index["og:modified_time"])
	m.Generator = index["generator"]
	if kw := index["keywords"]; kw != "" {
		parts := strings.Split(kw, ",")
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				m.Keywords = append(m.Keywords, t)
			}
		}
	}

	base, err := nurl.Parse(finalURL)
	if err == nil {
		m.CanonicalURL = resolveAgainst(base, doc.Find(`link[rel="canonical"]`).First(), "href")
		m.Favicon = resolveFavicon(base, doc)
	}

	return m
}

func htmlLang(doc *goquery.Document) string {
	lang, _ := doc.Find("html").First().Attr("lang")
	return lang
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveAgainst(base *nurl.URL, sel *goquery.Selection, attr string) string {
	val, ok := sel.Attr(attr)
	if !ok || val == "" {
		return ""
	}
	resolved, err := base.Parse(val)
	if err != nil {
		return ""
	}
	return resolved.String()
}

func resolveFavicon(base *nurl.URL, doc *goquery.Document) string {
	for _, sel := range []string{`link[rel="icon"]`, `link[rel="shortcut icon"]`, `link[rel="apple-touch-icon"]`} {
		if href := resolveAgainst(base, doc.Find(sel).First(), "href"); href != "" {
			return href
		}
	}
	fallback, err := base.Parse("/favicon.ico")
	if err != nil {
		return ""
	}
	return fallback.String()
}
