// Package ssrf classifies outbound fetch targets as safe or unsafe. It is
// consulted twice in a scrape's lifetime: once before any navigation begins
// (DNS-aware, fail-closed), and once synchronously for every sub-request the
// browser issues while rendering a page.
package ssrf

import (
	"context"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// Reason codes, checked in the order listed here — first match wins. These
// match the error kinds surfaced to API callers.
const (
	ReasonInvalidURL               = "invalid_url"
	ReasonUnsupportedProtocol      = "unsupported_protocol"
	ReasonBlockedLocalhost         = "blocked_localhost"
	ReasonBlockedPrivateIP         = "blocked_private_ip"
	ReasonBlockedPrivateHostname   = "blocked_private_hostname"
	ReasonBlockedPrivateResolution = "blocked_private_resolution"
)

// Result is the outcome of a Preflight check.
type Result struct {
	OK     bool
	Reason string
}

var privateHostnameSuffixes = []string{
	".internal", ".intranet", ".home", ".lan", ".corp",
	".test", ".example", ".invalid",
}

var privateHostnameRegexes = []*regexp.Regexp{
	regexp.MustCompile(`^10\.`),
	regexp.MustCompile(`^172\.(1[6-9]|2[0-9]|3[0-1])\.`),
	regexp.MustCompile(`^192\.168\.`),
}

func isLocalhostName(host string) bool {
	switch host {
	case "localhost", "ip6-localhost", "":
		return true
	}
	return strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local")
}

func hasPrivateHostnameSuffix(host string) bool {
	for _, suf := range privateHostnameSuffixes {
		if strings.HasSuffix(host, suf) {
			return true
		}
	}
	for _, re := range privateHostnameRegexes {
		if re.MatchString(host) {
			return true
		}
	}
	return false
}

// IsPrivateIP classifies an IP as belonging to a non-routable, internal, or
// otherwise disallowed range: IPv4 loopback, RFC-1918, link-local, reserved,
// unspecified; IPv6 loopback, link-local, unique-local. IPv4-mapped IPv6
// addresses are unwrapped and re-checked against the IPv4 rules.
func IsPrivateIP(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4.IsLoopback() || ip4.IsPrivate() || ip4.IsLinkLocalUnicast() ||
			ip4.IsLinkLocalMulticast() || ip4.IsUnspecified() ||
			ip4[0] == 0 || (ip4[0] == 100 && ip4[1]&0xc0 == 64) // 0.0.0.0/8, 100.64.0.0/10 CGNAT
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

// classifyStatic runs every check that does not require DNS. It is shared by
// Preflight and ShouldBlockRequest so both agree on all synchronous cases.
func classifyStatic(raw string) (u *url.URL, reason string, blocked bool) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return nil, ReasonInvalidURL, true
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return parsed, ReasonUnsupportedProtocol, true
	}

	host := strings.ToLower(parsed.Hostname())
	if isLocalhostName(host) {
		return parsed, ReasonBlockedLocalhost, true
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			ip = ip4
		}
		if IsPrivateIP(ip) {
			return parsed, ReasonBlockedPrivateIP, true
		}
		return parsed, "", false
	}

	if hasPrivateHostnameSuffix(host) {
		return parsed, ReasonBlockedPrivateHostname, true
	}

	return parsed, "", false
}

// Resolver is the subset of net.Resolver Preflight needs; it exists so tests
// can stub DNS lookups deterministically.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Preflight runs the full SSRF check, including a DNS resolution of the
// hostname. It is fail-closed: any lookup error is treated as private.
func Preflight(ctx context.Context, resolver Resolver, raw string) Result {
	parsed, reason, blocked := classifyStatic(raw)
	if blocked {
		return Result{OK: false, Reason: reason}
	}

	// Hostname was a literal IP — classifyStatic already resolved it.
	if net.ParseIP(parsed.Hostname()) != nil {
		return Result{OK: true}
	}

	addrs, err := resolver.LookupIPAddr(ctx, parsed.Hostname())
	if err != nil || len(addrs) == 0 {
		return Result{OK: false, Reason: ReasonBlockedPrivateResolution}
	}
	for _, a := range addrs {
		ip := a.IP
		if ip4 := ip.To4(); ip4 != nil {
			ip = ip4
		}
		if IsPrivateIP(ip) {
			return Result{OK: false, Reason: ReasonBlockedPrivateResolution}
		}
	}
	return Result{OK: true}
}

// ShouldBlockRequest is the synchronous, DNS-free guard applied to every
// sub-request the browser issues while rendering a page. It is a pure
// function: same input, same output, every time.
func ShouldBlockRequest(raw string) bool {
	_, _, blocked := classifyStatic(raw)
	return blocked
}
