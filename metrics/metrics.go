// Package metrics holds the Prometheus instruments exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apiyt_extractions_total",
		Help: "Extraction runs by mode (probe, inspect, download).",
	}, []string{"mode"})

	Downloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apiyt_downloads_total",
		Help: "Completed download requests by requested container.",
	}, []string{"format"})

	ThumbnailCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apiyt_thumbnail_cache_total",
		Help: "Thumbnail cache lookups by result (hit, miss).",
	}, []string{"result"})
)
