// Package metrics provides Prometheus metrics for the proxy backend and the scraper.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeproxy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokeproxy_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Data source metrics
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeproxy_source_fetches_total",
			Help: "Full set fetches against card data sources",
		},
		[]string{"source", "result"}, // source: "api", "local"; result: "success", "error"
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokeproxy_source_fetch_duration_seconds",
			Help:    "Time taken to fetch and decode a full set from a data source",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// Resolver metrics
	ResolverCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeproxy_resolver_cache_hits_total",
			Help: "Set lookups served from the in-memory set cache",
		},
		[]string{"source"},
	)

	ResolverCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeproxy_resolver_cache_misses_total",
			Help: "Set lookups that required a fetch (shared fetches count once per caller)",
		},
		[]string{"source"},
	)

	CardResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeproxy_card_resolutions_total",
			Help: "Card resolutions by outcome",
		},
		[]string{"outcome"}, // "primary", "fallback", "positional", "not_found", "no_source"
	)

	// Card art cache metrics
	CardArtCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeproxy_card_art_cache_hits_total",
			Help: "Card art requests served from cache",
		},
	)

	CardArtCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeproxy_card_art_cache_misses_total",
			Help: "Card art requests that required a download",
		},
	)

	// Scraper metrics
	ScrapedCardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeproxy_scraped_cards_total",
			Help: "Card pages processed by the scraper",
		},
		[]string{"result"}, // "success", "skipped", "not_found", "failed"
	)

	ScrapeSetDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokeproxy_scrape_set_duration_seconds",
			Help:    "Time taken to scrape a whole set",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)
