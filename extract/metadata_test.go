package extract

import "testing"

func TestMetadataReadsOpenGraphAndMeta(t *testing.T) {
	html := `<html lang="en"><head>
		<title>Fallback Title</title>
		<meta property="og:title" content="OG Title">
		<meta name="description" content="a plain description">
		<meta name="author" content="Jane Doe">
		<meta property="og:site_name" content="Example Site">
		<meta name="keywords" content="go, scraping, http">
		<link rel="canonical" href="/canonical-page">
		<link rel="icon" href="/favicon.png">
	</head><body></body></html>`

	m := Metadata(html, "https://example.com/article", 200, "", "")

	if m.Title != "OG Title" {
		t.Errorf("Title = %q, want %q", m.Title, "OG Title")
	}
	if m.Description != "a plain description" {
		t.Errorf("Description = %q, want %q", m.Description, "a plain description")
	}
	if m.Language != "en" {
		t.Errorf("Language = %q, want %q", m.Language, "en")
	}
	if m.Author != "Jane Doe" {
		t.Errorf("Author = %q, want %q", m.Author, "Jane Doe")
	}
	if m.SiteName != "Example Site" {
		t.Errorf("SiteName = %q, want %q", m.SiteName, "Example Site")
	}
	if m.CanonicalURL != "https://example.com/canonical-page" {
		t.Errorf("CanonicalURL = %q, want absolute canonical URL", m.CanonicalURL)
	}
	if m.Favicon != "https://example.com/favicon.png" {
		t.Errorf("Favicon = %q, want absolute favicon URL", m.Favicon)
	}
	if len(m.Keywords) != 3 || m.Keywords[0] != "go" {
		t.Errorf("Keywords = %v, want [go scraping http]", m.Keywords)
	}
}

func TestMetadataPrefersArticleTitleOverMetaTags(t *testing.T) {
	html := `<html><head><title>Page Title</title><meta property="og:title" content="OG Title"></head></html>`

	m := Metadata(html, "https://example.com/", 200, "Readability Title", "Readability excerpt")

	if m.Title != "Readability Title" {
		t.Errorf("Title = %q, want the readability-extracted title to win", m.Title)
	}
	if m.Description != "Readability excerpt" {
		t.Errorf("Description = %q, want the readability excerpt to win", m.Description)
	}
}

func TestMetadataFallsBackToFaviconICO(t *testing.T) {
	html := `<html><head></head></html>`

	m := Metadata(html, "https://example.com/deep/page", 200, "", "")

	if m.Favicon != "https://example.com/favicon.ico" {
		t.Errorf("Favicon = %q, want the /favicon.ico fallback", m.Favicon)
	}
}

func TestMetadataDefaultsStatusCodeTo200(t *testing.T) {
	m := Metadata("<html></html>", "https://example.com/", 0, "", "")
	if m.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200 default", m.StatusCode)
	}
}
