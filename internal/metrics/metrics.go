package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status label values shared by the counters below
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusEmpty   = "empty"
	StatusCached  = "cached"
)

// Catalog transport metrics
var (
	CatalogRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "titlovi_catalog_requests_total",
			Help: "Total number of requests sent to the Titlovi catalog.",
		},
		[]string{"endpoint", "status"},
	)

	CatalogRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "titlovi_catalog_request_duration_seconds",
			Help:    "Latency of Titlovi catalog requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Acquisition metrics
var (
	TokenRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "titlovi_token_refreshes_total",
			Help: "Total number of authentication token refreshes.",
		},
		[]string{"status"},
	)

	SearchPagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "titlovi_search_pages_total",
			Help: "Total number of search result pages fetched.",
		},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "titlovi_searches_total",
			Help: "Total number of subtitle searches.",
		},
		[]string{"content_type", "status"},
	)

	SubtitleFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "titlovi_subtitle_fetches_total",
			Help: "Total number of subtitle fetches.",
		},
		[]string{"content_type", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		CatalogRequestsTotal,
		CatalogRequestDuration,
		TokenRefreshesTotal,
		SearchPagesTotal,
		SearchesTotal,
		SubtitleFetchesTotal,
	)
}
