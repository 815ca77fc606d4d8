package extract

import (
	"bytes"
	nurl "net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// whitelist is the set of tags that survive the unwrap pass. Anything not
// listed here is replaced by its children (text preserved) per spec §4.9
// step 7. This is the "typed visitor, whitelist as data" design the spec's
// notes call for, not imperative DOM mutation.
var whitelist = map[atom.Atom]struct{}{
	atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {}, atom.H5: {}, atom.H6: {},
	atom.P: {}, atom.Ul: {}, atom.Ol: {}, atom.Li: {}, atom.A: {},
	atom.Pre: {}, atom.Code: {}, atom.Blockquote: {},
	atom.Table: {}, atom.Thead: {}, atom.Tbody: {}, atom.Tfoot: {},
	atom.Tr: {}, atom.Th: {}, atom.Td: {},
	atom.Em: {}, atom.I: {}, atom.Strong: {}, atom.B: {},
	atom.Hr: {}, atom.Br: {}, atom.Dl: {}, atom.Dt: {}, atom.Dd: {},
	atom.Sup: {}, atom.Sub: {}, atom.Abbr: {}, atom.Mark: {},
	atom.Del: {}, atom.Ins: {}, atom.Details: {}, atom.Summary: {},
}

// removalSelector matches the element-removal set from spec §4.9 step 5.
var removalSelector = cascadia.MustCompile(strings.Join([]string{
	"img", "picture", "source", "video", "audio", "iframe", "embed", "object",
	"canvas", "svg", "script", "style", "noscript", "form", "button", "input",
	"select", "textarea", "link", "nav", "header", "footer", "aside",
	"[aria-live]",
	`[role="banner"]`, `[role="navigation"]`, `[role="contentinfo"]`,
	`[class*="sidebar"]`, `[class*="ad-"]`, `[class*="advertisement"]`,
	`[class*="social"]`, `[class*="share"]`, `[class*="related"]`,
	`[id*="ad-"]`,
}, ", "))

// Sanitize parses cleanHTML (the readability-extracted or fallback
// content), rewrites relative hrefs to absolute using baseURL, removes the
// disallowed-element set, collapses <figure> to its caption, unwraps
// anything outside the whitelist, and scrubs every attribute except href
// on <a>. It returns the sanitised outer HTML string.
func Sanitize(cleanHTML string, baseURL *nurl.URL) (string, error) {
	doc, err := html.Parse(strings.NewReader(cleanHTML))
	if err != nil {
		return "", err
	}

	rewriteLinks(doc, baseURL)
	removeMatches(doc, removalSelector)
	collapseFigures(doc)
	doc = unwrapNonWhitelisted(doc)
	scrubAttributes(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteLinks makes every <a href> absolute against baseURL. Malformed
// hrefs are left untouched per spec §4.9 step 4.
func rewriteLinks(n *html.Node, base *nurl.URL) {
	walk(n, func(node *html.Node) {
		if node.Type != html.ElementNode || node.DataAtom != atom.A {
			return
		}
		for i, attr := range node.Attr {
			if attr.Key != "href" {
				continue
			}
			resolved, err := base.Parse(attr.Val)
			if err != nil {
				continue
			}
			node.Attr[i].Val = resolved.String()
		}
	})
}

func removeMatches(doc *html.Node, sel cascadia.Selector) {
	for {
		matches := cascadia.QueryAll(doc, sel)
		if len(matches) == 0 {
			return
		}
		for _, m := range matches {
			if m.Parent != nil {
				m.Parent.RemoveChild(m)
			}
		}
	}
}

// collapseFigures replaces <figure> with its <figcaption> wrapped in <p>,
// or removes the figure entirely if it has no caption.
func collapseFigures(doc *html.Node) {
	for {
		figures := cascadia.QueryAll(doc, figureSelector)
		if len(figures) == 0 {
			return
		}
		for _, fig := range figures {
			caption := findChild(fig, atom.Figcaption)
			if caption == nil {
				if fig.Parent != nil {
					fig.Parent.RemoveChild(fig)
				}
				continue
			}
			p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
			for c := caption.FirstChild; c != nil; {
				next := c.NextSibling
				caption.RemoveChild(c)
				p.AppendChild(c)
				c = next
			}
			if fig.Parent != nil {
				fig.Parent.InsertBefore(p, fig)
				fig.Parent.RemoveChild(fig)
			}
		}
	}
}

var figureSelector = cascadia.MustCompile("figure")

func findChild(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

// unwrapNonWhitelisted promotes the children of any element node whose tag
// is not in whitelist, preserving text content and traversal order.
// Document/text/comment nodes pass through untouched.
func unwrapNonWhitelisted(doc *html.Node) *html.Node {
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		child := n.FirstChild
		for child != nil {
			next := child.NextSibling
			visit(child)
			child = next
		}

		if n.Type != html.ElementNode {
			return
		}
		if _, ok := whitelist[n.DataAtom]; ok {
			return
		}
		if n.DataAtom == atom.Html || n.DataAtom == atom.Head || n.DataAtom == atom.Body {
			return
		}
		if n.Parent == nil {
			return
		}
		for c := n.FirstChild; c != nil; {
			nc := c.NextSibling
			n.RemoveChild(c)
			n.Parent.InsertBefore(c, n)
			c = nc
		}
		n.Parent.RemoveChild(n)
	}
	visit(doc)
	return doc
}

// scrubAttributes strips every attribute from every element except href on
// <a>, per spec §4.9 step 8.
func scrubAttributes(doc *html.Node) {
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if n.DataAtom == atom.A {
			kept := make([]html.Attribute, 0, 1)
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					kept = append(kept, attr)
				}
			}
			n.Attr = kept
			return
		}
		n.Attr = nil
	})
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
