package extract

import (
	"strings"
	"testing"
)

func TestPreStripRemovesStyleBlock(t *testing.T) {
	in := `<html><head><style>body { color: red; }</style></head><body><p>text</p></body></html>`
	out := PreStrip(in)

	if strings.Contains(out, "<style") || strings.Contains(out, "color: red") {
		t.Errorf("expected style block removed, got: %s", out)
	}
	if !strings.Contains(out, "<p>text</p>") {
		t.Errorf("expected body content preserved, got: %s", out)
	}
}

func TestPreStripRemovesStylesheetLink(t *testing.T) {
	in := `<link rel="stylesheet" href="/main.css"><p>text</p>`
	out := PreStrip(in)

	if strings.Contains(out, "<link") {
		t.Errorf("expected stylesheet link removed, got: %s", out)
	}
}

func TestPreStripRemovesInlineStyleAttribute(t *testing.T) {
	in := `<div style="display:none">hidden-ish</div>`
	out := PreStrip(in)

	if strings.Contains(out, "style=") {
		t.Errorf("expected inline style attribute removed, got: %s", out)
	}
	if !strings.Contains(out, "hidden-ish") {
		t.Errorf("expected element text content preserved, got: %s", out)
	}
}

func TestPreStripLeavesPlainHTMLUntouched(t *testing.T) {
	in := `<p>nothing to strip here</p>`
	out := PreStrip(in)

	if out != in {
		t.Errorf("PreStrip() = %q, want unchanged %q", out, in)
	}
}
