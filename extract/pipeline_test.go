package extract

import (
	"strings"
	"testing"
)

func TestPipelineRunProducesMarkdownAndMetadata(t *testing.T) {
	p := New()
	html := `<html><head><title>Page Title</title></head><body>
		<article>
			<h1>Headline</h1>
			<p>This is the main body paragraph with enough text to be recognised as the primary article content by the readability heuristic, which prefers the element with the greatest density of plain text over navigation chrome.</p>
		</article>
		<nav><a href="/about">About</a></nav>
	</body></html>`

	result, err := p.Run(html, "https://example.com/article", 200, Options{OnlyMainContent: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Markdown == "" {
		t.Error("expected non-empty Markdown")
	}
	if result.Metadata.SourceURL != "https://example.com/article" {
		t.Errorf("Metadata.SourceURL = %q, want the final URL", result.Metadata.SourceURL)
	}
	if result.Metadata.StatusCode != 200 {
		t.Errorf("Metadata.StatusCode = %d, want 200", result.Metadata.StatusCode)
	}
	if result.HTML == "" {
		t.Error("expected sanitized HTML to be populated")
	}
	if result.RawHTML != html {
		t.Errorf("expected RawHTML to be preserved verbatim")
	}
}

func TestPipelineRunRejectsInvalidSourceURL(t *testing.T) {
	p := New()
	_, err := p.Run("<p>x</p>", "://not a url", 200, Options{})
	if err == nil {
		t.Fatal("expected an error for an unparsable source URL")
	}
}

func TestPipelineExtractLinksMatchesPlainLinks(t *testing.T) {
	p := New()
	html := `<a href="https://example.com/a">A</a>`

	result := p.ExtractLinks(html, "https://example.com/")
	if len(result.Internal) != 1 {
		t.Errorf("Internal = %v, want 1 entry", result.Internal)
	}
}

func TestPipelineRunWithoutMainContentKeepsFullBody(t *testing.T) {
	p := New()
	html := `<html><body><nav><a href="/x">nav link</a></nav><p>body text</p></body></html>`

	result, err := p.Run(html, "https://example.com/", 200, Options{OnlyMainContent: false})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !strings.Contains(result.Markdown, "body text") {
		t.Errorf("expected body text present in markdown, got: %s", result.Markdown)
	}
}
