// Package fetch implements the two fetch tiers: a cheap plain HTTP GET
// (C7, fastfetch.go) tried first, and a full headless-browser navigation
// (C8, browserfetch.go) used when the fast path can't produce usable HTML.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	tls2 "github.com/refraction-networking/utls"
)

// minHTMLBytes is the size floor below which a response is assumed to be a
// paywall/interstitial shell rather than real content.
const minHTMLBytes = 2000

var fastFetchUAs = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
}

// FastResult is the outcome of a successful fast fetch.
type FastResult struct {
	HTML       string
	FinalURL   string
	StatusCode int
}

// FastFetcher issues a single plain HTTP GET with a Chrome TLS fingerprint
// (via utls) and a realistic header set.
type FastFetcher struct {
	client *http.Client
}

// NewFastFetcher builds a fetcher whose transport dials TLS with a Chrome
// ClientHello fingerprint, matching what a real Chrome browser presents on
// the wire.
func NewFastFetcher() *FastFetcher {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr)
		},
	}
	return &FastFetcher{client: &http.Client{Transport: transport}}
}

// Fetch issues the GET. It returns (nil, nil) — not an error — when the
// fast path is inconclusive: transport failure, non-HTML content type, or a
// body under the size floor. Callers fall back to the browser fetcher in
// that case. timeout is clamped to at most 5s by the caller per spec §4.7.
func (f *FastFetcher) Fetch(ctx context.Context, timeout time.Duration, targetURL string) (*FastResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("User-Agent", fastFetchUAs[rand.Intn(len(fastFetchUAs))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(ct), "text/html") {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, nil
	}
	if len(body) < minHTMLBytes {
		return nil, nil
	}

	return &FastResult{
		HTML:       string(body),
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
	}, nil
}

func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("fastfetch: tls handshake: %w", err)
	}
	return tlsConn, nil
}
