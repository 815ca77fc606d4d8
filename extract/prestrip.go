// Package extract implements the content-extraction pipeline (C9): parse
// raw HTML into a DOM, run a readability-style main-content heuristic,
// sanitise to an LLM-safe whitelist, convert to Markdown, tighten
// whitespace, and pull page metadata.
package extract

import "regexp"

var (
	styleBlockRe = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	styleLinkRe  = regexp.MustCompile(`(?i)<link[^>]*rel=["']?stylesheet["']?[^>]*>`)
	inlineStyle  = regexp.MustCompile(`(?i)\s+style\s*=\s*"[^"]*"|\s+style\s*=\s*'[^']*'`)
)

// PreStrip removes <style> blocks, <link rel="stylesheet"> tags, and
// inline style="" attributes from raw HTML before parsing. This reduces
// parse cost and keeps CSS tokens out of the DOM entirely.
func PreStrip(rawHTML string) string {
	out := styleBlockRe.ReplaceAllString(rawHTML, "")
	out = styleLinkRe.ReplaceAllString(out, "")
	out = inlineStyle.ReplaceAllString(out, "")
	return out
}
