package fetch

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/sandtree/siphon/models"
	sstealth "github.com/sandtree/siphon/stealth"
	"github.com/sandtree/siphon/ssrf"
)

// blockedResourceTypes is the resource-type blocklist applied to every
// sub-request during a browser fetch.
var blockedResourceTypes = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeImage:       {},
	proto.NetworkResourceTypeFont:        {},
	proto.NetworkResourceTypeMedia:       {},
	proto.NetworkResourceTypeStylesheet:  {},
	proto.NetworkResourceTypeTextTrack:   {},
	proto.NetworkResourceTypeEventSource: {},
	proto.NetworkResourceTypeWebSocket:   {},
	proto.NetworkResourceTypeManifest:    {},
	proto.NetworkResourceTypeOther:       {},
}

// trackerRegex matches common analytics/tracker domains blocked on every
// sub-request, independent of the SSRF guard.
var trackerRegex = regexp.MustCompile(`(?i)(google-analytics\.com|googletagmanager\.com|doubleclick\.net|facebook\.net|fbcdn\.net|analytics\.|hotjar\.com|segment\.io|sentry\.io|newrelic\.com|datadome\.co|cloudflareinsights\.com)`)

// settleSelectors are probed, in order, for attachment after navigation as
// a best-effort signal that the main content has rendered.
var settleSelectors = []string{
	"article", "main", "[role=main]", ".post-content", ".entry-content", "#content",
}

// overlaySelectors are probed for a cookie/consent/close click target.
var overlaySelectors = []string{
	`button[id*="accept"]`, `button[class*="accept"]`,
	`button[id*="consent"]`, `button[class*="consent"]`,
	`[aria-label*="close" i]`, `[class*="cookie"] button`,
}

// BrowserResult is the outcome of a successful browser fetch.
type BrowserResult struct {
	HTML       string
	FinalURL   string
	StatusCode int
}

// BrowserFetcher drives a single navigation in a fresh, isolated browser
// context per spec §4.8.
type BrowserFetcher struct{}

// NewBrowserFetcher constructs a BrowserFetcher.
func NewBrowserFetcher() *BrowserFetcher {
	return &BrowserFetcher{}
}

// Fetch opens a page on b, applies a stealth profile and request filter,
// navigates to targetURL, settles, dismisses overlays, and returns the
// rendered HTML. The context is closed on every exit path.
func (f *BrowserFetcher) Fetch(ctx context.Context, b *rod.Browser, targetURL string) (*BrowserResult, error) {
	bctx, err := b.Incognito()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrKindNavigationFailed, "failed to create browser context", err)
	}
	defer func() {
		_ = bctx.Close()
	}()

	page, err := bctx.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrKindNavigationFailed, "failed to open page", err)
	}
	defer func() {
		_ = page.Close()
	}()

	profile := sstealth.Pick()

	// Stealth injection must happen before navigation so it applies to the
	// very first page script that runs.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		// Cosmetic failure: proceed without the baseline patch rather than
		// failing the whole fetch.
		_ = err
	}
	if _, err := page.EvalOnNewDocument(sstealth.PatchScript(profile)); err != nil {
		_ = err
	}

	headers := make(proto.NetworkHeaders, len(profile.ExtraHeaders()))
	for k, v := range profile.ExtraHeaders() {
		headers[k] = gson.New(v)
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: headers}.Call(page)

	_ = proto.EmulationSetDeviceMetricsOverride{
		Width:             profile.Viewport.Width,
		Height:            profile.Viewport.Height,
		DeviceScaleFactor: profile.PixelRatio,
		Mobile:            profile.Mobile,
	}.Call(page)

	_ = proto.NetworkSetUserAgentOverride{
		UserAgent:      profile.UserAgent,
		AcceptLanguage: profile.Locale,
		Platform:       profile.Platform,
	}.Call(page)
	_ = proto.EmulationSetTimezoneOverride{TimezoneID: profile.Timezone}.Call(page)

	docCT := &contentTypeBox{}
	router := f.installHijack(page, docCT)
	defer func() { _ = router.Stop() }()

	p := page.Context(ctx)

	if err := p.Navigate(targetURL); err != nil {
		return nil, categorizeNavError(err)
	}

	if ct := docCT.get(); strings.Contains(strings.ToLower(ct), "application/pdf") {
		return nil, models.NewScrapeError(models.ErrKindUnsupportedContentType, "response is a PDF", nil)
	}

	// WaitRequestIdle uses the Fetch domain, which conflicts with the
	// HijackRequests router mounted above on Chromium 145+; WaitDOMStable
	// is the fallback that doesn't collide with it.
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		_ = err
	}

	dismissOverlays(p)

	// Best-effort wait for a settle selector, up to 3s.
	settleCtx, settleCancel := context.WithTimeout(ctx, 3*time.Second)
	waitForAnySelector(p.Context(settleCtx), settleSelectors)
	settleCancel()

	statusCode := 200
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`); err == nil {
		if v := res.Value.Int(); v > 0 {
			statusCode = v
		}
	}

	html, err := p.HTML()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrKindNavigationFailed, "failed to extract page HTML", err)
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = targetURL
	}

	return &BrowserResult{HTML: html, FinalURL: finalURL, StatusCode: statusCode}, nil
}

// contentTypeBox is a mutex-free single-writer box: the hijack callback
// runs on the router's own goroutine and writes at most once for the main
// document request, so a plain field read after Navigate returns is safe
// as long as the router has had a chance to process the response — which
// LoadResponse guarantees happens synchronously within the callback.
type contentTypeBox struct {
	ct string
}

func (b *contentTypeBox) get() string { return b.ct }

// installHijack mounts the per-sub-request filter: SSRF guard first, then
// resource-type blocklist, then tracker-domain regex. For the top-level
// document request it loads the real response so the Content-Type can be
// inspected before the browser renders it — this is how a PDF response is
// distinguished from HTML, since Chrome's Navigation Timing API does not
// expose response headers.
func (f *BrowserFetcher) installHijack(page *rod.Page, docCT *contentTypeBox) *rod.HijackRouter {
	router := page.HijackRequests()
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		reqURL := ctx.Request.URL().String()

		if ssrf.ShouldBlockRequest(reqURL) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if _, blocked := blockedResourceTypes[ctx.Request.Type()]; blocked {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if trackerRegex.MatchString(reqURL) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}

		if ctx.Request.Type() == proto.NetworkResourceTypeDocument {
			if err := ctx.LoadResponse(http.DefaultClient, true); err == nil {
				docCT.ct = ctx.Response.Headers().Get("Content-Type")
				return
			}
		}

		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
	return router
}

// dismissOverlays clicks the first visible cookie/consent selector match
// and hides residual overlay-like elements. It never throws.
func dismissOverlays(p *rod.Page) {
	for _, sel := range overlaySelectors {
		el, err := p.Timeout(500 * time.Millisecond).Element(sel)
		if err == nil && el != nil {
			visible, _ := el.Visible()
			if visible {
				_ = el.Click(proto.InputMouseButtonLeft, 1)
				break
			}
		}
	}
	const hideJS = `() => {
		const selectors = ['[class*="cookie"]', '[class*="consent"]', '[class*="gdpr"]', '[id*="cookie"]', '[id*="consent"]'];
		for (const sel of selectors) {
			document.querySelectorAll(sel).forEach(el => {
				const style = window.getComputedStyle(el);
				if (style.position === 'fixed' || style.position === 'sticky') {
					el.remove();
				}
			});
		}
	}`
	_, _ = p.Eval(hideJS)
}

// waitForAnySelector waits until an element matching any of selectors is
// attached, using one comma-joined selector list so no single entry can use
// up the whole wait.
func waitForAnySelector(p *rod.Page, selectors []string) {
	_, _ = p.Element(strings.Join(selectors, ", "))
}

func evalStringOrEmpty(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func categorizeNavError(err error) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrKindNavigationFailed, "navigation timed out", err)
	default:
		return models.NewScrapeError(models.ErrKindNavigationFailed, "navigation to target URL failed", err)
	}
}
