// Package stealth provides the anti-bot fingerprint layer applied to every
// browser context: a randomised, internally consistent profile (user-agent,
// viewport, locale, timezone, platform) and the DOM-patching script that
// runs before any page script.
package stealth

import (
	"math/rand"
)

// Viewport is a browser window size.
type Viewport struct {
	Width  int
	Height int
}

// Profile is a tuple of values that must agree with each other: the
// platform string matches the UA family, the Client-Hints headers match
// the UA's browser/version, etc. Profiles are immutable values.
type Profile struct {
	UserAgent   string
	Viewport    Viewport
	Locale      string
	Timezone    string
	Platform    string
	Mobile      bool
	PixelRatio  float64
	SecChUA     string
	SecChUAFull string
}

// pool is the small fixed set of profiles picked uniformly at random per
// context. Each entry is internally consistent.
var pool = []Profile{
	{
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Viewport:    Viewport{Width: 1920, Height: 1080},
		Locale:      "en-US",
		Timezone:    "America/New_York",
		Platform:    "Win32",
		Mobile:      false,
		PixelRatio:  1,
		SecChUA:     `"Chromium";v="131", "Google Chrome";v="131", "Not_A Brand";v="24"`,
		SecChUAFull: `"Windows"`,
	},
	{
		UserAgent:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Viewport:    Viewport{Width: 1440, Height: 900},
		Locale:      "en-US",
		Timezone:    "America/Los_Angeles",
		Platform:    "MacIntel",
		Mobile:      false,
		PixelRatio:  2,
		SecChUA:     `"Chromium";v="131", "Google Chrome";v="131", "Not_A Brand";v="24"`,
		SecChUAFull: `"macOS"`,
	},
	{
		UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Viewport:    Viewport{Width: 1366, Height: 768},
		Locale:      "en-GB",
		Timezone:    "Europe/London",
		Platform:    "Linux x86_64",
		Mobile:      false,
		PixelRatio:  1,
		SecChUA:     `"Chromium";v="131", "Google Chrome";v="131", "Not_A Brand";v="24"`,
		SecChUAFull: `"Linux"`,
	},
	{
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
		Viewport:    Viewport{Width: 1536, Height: 864},
		Locale:      "en-US",
		Timezone:    "America/Chicago",
		Platform:    "Win32",
		Mobile:      false,
		PixelRatio:  1.25,
		SecChUA:     `"Chromium";v="130", "Google Chrome";v="130", "Not_A Brand";v="24"`,
		SecChUAFull: `"Windows"`,
	},
}

// webglVendors is the small list of vendor/renderer pairs the injected
// script draws from for WebGL fingerprinting parameters.
var webglVendors = [][2]string{
	{"Google Inc. (NVIDIA)", "ANGLE (NVIDIA, NVIDIA GeForce RTX 3060 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
	{"Google Inc. (Intel)", "ANGLE (Intel, Intel(R) UHD Graphics 630 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
	{"Google Inc. (AMD)", "ANGLE (AMD, AMD Radeon RX 580 Series Direct3D11 vs_5_0 ps_5_0, D3D11)"},
}

// Pick selects one profile uniformly at random from the fixed pool.
func Pick() Profile {
	return pool[rand.Intn(len(pool))]
}

// WebGLVendor returns a random vendor/renderer pair consistent with the
// injected script's WebGL spoofing.
func WebGLVendor() (vendor, renderer string) {
	pair := webglVendors[rand.Intn(len(webglVendors))]
	return pair[0], pair[1]
}

// HardwareConcurrency returns a plausible core count in [4, 16].
func HardwareConcurrency() int {
	choices := []int{4, 6, 8, 12, 16}
	return choices[rand.Intn(len(choices))]
}

// DeviceMemory returns a plausible device memory value in GB.
func DeviceMemory() int {
	choices := []int{4, 8, 16}
	return choices[rand.Intn(len(choices))]
}

// ExtraHeaders builds the Accept/Accept-Language/DNT/Client-Hints headers
// that must agree with the profile's UA.
func (p Profile) ExtraHeaders() map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           p.Locale + ",en;q=0.9",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-CH-UA":                 p.SecChUA,
		"Sec-CH-UA-Platform":        p.SecChUAFull,
		"Sec-CH-UA-Mobile":          boolHeader(p.Mobile),
	}
}

func boolHeader(b bool) string {
	if b {
		return "?1"
	}
	return "?0"
}
