package extract

import (
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sandtree/siphon/models"
)

// Links parses sanitisedHTML (post-Sanitize, so hrefs are already
// absolute) and splits anchors into internal/external by host match
// against base.
func Links(sanitizedHTML string, base *nurl.URL) models.LinksResult {
	result := models.LinksResult{Internal: []models.Link{}, External: []models.Link{}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitizedHTML))
	if err != nil {
		return result
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved, err := nurl.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		link := models.Link{Href: href, Text: strings.TrimSpace(s.Text())}
		if strings.EqualFold(resolved.Host, base.Host) {
			result.Internal = append(result.Internal, link)
		} else {
			result.External = append(result.External, link)
		}
	})

	return result
}
