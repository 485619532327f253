package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediaweb",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mediaweb",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"method", "path"})

	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediaweb",
		Name:      "api_requests_total",
		Help:      "Total requests to the media API by operation and result status.",
	}, []string{"operation", "status"})

	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mediaweb",
		Name:      "api_request_duration_seconds",
		Help:      "Media API request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 15},
	}, []string{"operation"})

	BatchDownloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediaweb",
		Name:      "batch_downloads_total",
		Help:      "Batch download submissions by outcome.",
	}, []string{"outcome"})

	BatchDownloadEpisodes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mediaweb",
		Name:      "batch_download_episodes_total",
		Help:      "Total playlist entries requested through accepted batch downloads.",
	})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mediaweb",
		Name:      "cache_hits_total",
		Help:      "Total number of loader cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mediaweb",
		Name:      "cache_misses_total",
		Help:      "Total number of loader cache misses.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		APIRequestsTotal,
		APIRequestDuration,
		BatchDownloadsTotal,
		BatchDownloadEpisodes,
		CacheHitsTotal,
		CacheMissesTotal,
	)
}
