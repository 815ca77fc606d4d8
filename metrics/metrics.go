// Package metrics exposes siphon's Prometheus instrumentation. All
// counters/histograms register eagerly via promauto, but recording only
// happens through a non-nil *Metrics built with enabled=true (cmd/siphon
// always constructs one and passes cfg.Metrics.Enabled to New).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scrapeOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siphon",
			Name:      "scrape_outcomes_total",
			Help:      "Total scrape attempts by outcome kind",
		},
		[]string{"kind"}, // "ok" or an error kind from models.ErrKind*
	)

	fetchTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siphon",
			Name:      "fetch_tier_total",
			Help:      "Total fetches by tier used",
		},
		[]string{"tier"}, // "fast" or "browser"
	)

	cacheResultTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siphon",
			Name:      "cache_result_total",
			Help:      "Total cache lookups by hit/miss",
		},
		[]string{"result"}, // "hit" or "miss"
	)

	searchCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siphon",
			Name:      "search_calls_total",
			Help:      "Total upstream search calls by outcome",
		},
		[]string{"outcome"}, // "ok" or "error"
	)

	scrapeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "siphon",
			Name:      "scrape_duration_seconds",
			Help:      "End-to-end scrape duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	browserPoolState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "siphon",
			Name:      "browser_pool_ready",
			Help:      "1 if the browser pool currently holds a ready browser, else 0",
		},
	)
)

// Metrics is a thin handle so callers can gate recording behind a nil
// check when metrics are disabled, without every call site needing an
// if-enabled branch around the promauto globals themselves.
type Metrics struct {
	enabled bool
}

// New returns a Metrics handle. When enabled is false, all recording
// methods are no-ops; the collectors still register but stay at zero.
func New(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

func (m *Metrics) ScrapeOutcome(kind string) {
	if m == nil || !m.enabled {
		return
	}
	scrapeOutcomesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) FetchTier(tier string) {
	if m == nil || !m.enabled {
		return
	}
	fetchTierTotal.WithLabelValues(tier).Inc()
}

func (m *Metrics) CacheResult(hit bool) {
	if m == nil || !m.enabled {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheResultTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SearchCall(ok bool) {
	if m == nil || !m.enabled {
		return
	}
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	searchCallsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveScrapeDuration(d time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	scrapeDuration.Observe(d.Seconds())
}

func (m *Metrics) SetBrowserPoolReady(ready bool) {
	if m == nil || !m.enabled {
		return
	}
	if ready {
		browserPoolState.Set(1)
	} else {
		browserPoolState.Set(0)
	}
}
