// Package browser owns the single headless-browser process a siphon worker
// uses for C8 (Browser Fetcher) navigations. It lazily launches the
// browser, recycles it after a configured request budget, and serialises
// concurrent cold starts so only one launch is ever in flight.
package browser

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/sandtree/siphon/models"
)

// state is the explicit state machine from spec §4.5: none | launching | ready.
type state int

const (
	stateNone state = iota
	stateLaunching
	stateReady
)

// Config controls how the pool launches and recycles the browser.
type Config struct {
	Headless   bool
	NoSandbox  bool
	BrowserBin string
	// DefaultProxy is used when ProxyList is empty.
	DefaultProxy string
	// ProxyList, when non-empty, is consulted round-robin on every browser
	// launch instead of DefaultProxy. The rotation advances per launch, not
	// per context: every context opened on one browser shares its proxy.
	ProxyList []string
	// MaxRequests is the request budget: the browser is recycled once
	// requestsServed reaches this value.
	MaxRequests int
}

// handle wraps the live browser with an identity token so a stale disconnect
// event (fired by a browser we have already recycled away from) cannot clear
// a newer handle.
type handle struct {
	browser *rod.Browser
	id      uint64
}

// Pool is the process-wide browser singleton. Safe for concurrent use.
type Pool struct {
	cfg Config

	mu             sync.Mutex
	st             state
	current        *handle
	requestsServed int
	nextID         uint64
	proxyIdx       int
	launchWait     chan struct{} // closed when a launch completes (success or failure)
	launchErr      error
}

// New creates an unlaunched Pool. The browser is started lazily on the
// first Acquire.
func New(cfg Config) *Pool {
	return &Pool{cfg: cfg, st: stateNone}
}

// Acquire returns the current ready browser handle, launching or recycling
// as needed per the state machine in spec §4.5. Concurrent callers during a
// cold start share the single resulting launch.
func (p *Pool) Acquire(ctx context.Context) (*rod.Browser, error) {
	for {
		p.mu.Lock()
		switch p.st {
		case stateReady:
			if p.cfg.MaxRequests > 0 && p.requestsServed >= p.cfg.MaxRequests {
				old := p.current
				p.st = stateNone
				p.current = nil
				p.requestsServed = 0
				p.mu.Unlock()
				// Fire-and-forget close of the retired browser.
				go func() {
					_ = old.browser.Close()
				}()
				continue
			}
			p.requestsServed++
			b := p.current.browser
			p.mu.Unlock()
			return b, nil

		case stateLaunching:
			wait := p.launchWait
			p.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}

		default: // stateNone
			p.st = stateLaunching
			wait := make(chan struct{})
			p.launchWait = wait
			p.mu.Unlock()

			h, err := p.launch()

			p.mu.Lock()
			if err != nil {
				p.st = stateNone
				p.launchErr = err
			} else {
				p.st = stateReady
				p.current = h
				p.requestsServed = 1
			}
			close(wait)
			p.mu.Unlock()

			if err != nil {
				return nil, err
			}
			return h.browser, nil
		}
	}
}

// nextProxy picks the next outbound proxy for a browser launch: round-robin
// across ProxyList when configured, falling back to the single
// DefaultProxy (or "" for direct connections) otherwise. Each pool-wide
// browser launch is one "context" in the round-robin's rotation, since the
// pool holds a single browser process at a time and recycles it wholesale.
func (p *Pool) nextProxy() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.cfg.ProxyList) == 0 {
		return p.cfg.DefaultProxy
	}
	proxy := p.cfg.ProxyList[p.proxyIdx%len(p.cfg.ProxyList)]
	p.proxyIdx++
	return proxy
}

func (p *Pool) launch() (*handle, error) {
	l := launcher.New().
		Headless(p.cfg.Headless).
		NoSandbox(p.cfg.NoSandbox)

	if p.cfg.BrowserBin != "" {
		l = l.Bin(p.cfg.BrowserBin)
	}
	if proxy := p.nextProxy(); proxy != "" {
		l = l.Proxy(proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrKindNavigationFailed, "failed to launch browser", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrKindNavigationFailed, "failed to connect to browser", err)
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.mu.Unlock()

	h := &handle{browser: b, id: id}
	p.watchDisconnect(h)

	slog.Info("browser launched", "controlURL", controlURL, "id", id)
	return h, nil
}

// watchDisconnect polls the browser's CDP connection and, on the first
// failure, clears the pool's state — but only if h is still the current
// handle, so a stale event from a browser we already recycled away from
// cannot clobber a newer one.
func (p *Pool) watchDisconnect(h *handle) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := h.browser.Version(); err != nil {
				p.mu.Lock()
				if p.current != nil && p.current.id == h.id {
					slog.Warn("browser disconnected, recycling", "id", h.id)
					p.st = stateNone
					p.current = nil
					p.requestsServed = 0
				}
				p.mu.Unlock()
				return
			}
			p.mu.Lock()
			stillCurrent := p.current != nil && p.current.id == h.id
			p.mu.Unlock()
			if !stillCurrent {
				return
			}
		}
	}()
}

// State reports the pool's current state as a string, for health reporting.
func (p *Pool) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.st {
	case stateLaunching:
		return "launching"
	case stateReady:
		return "ready"
	default:
		return "none"
	}
}

// Close gracefully shuts the current browser and transitions to none.
func (p *Pool) Close() {
	p.mu.Lock()
	h := p.current
	p.st = stateNone
	p.current = nil
	p.requestsServed = 0
	p.mu.Unlock()

	if h != nil {
		_ = h.browser.Close()
	}
}
