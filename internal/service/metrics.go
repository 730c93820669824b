package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	normalizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_import_normalizations_total",
			Help: "Model completions normalized, by source mode and path taken",
		},
		[]string{"source", "path"},
	)

	importCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_import_cache_lookups_total",
			Help: "Completion cache lookups by result",
		},
		[]string{"result"},
	)

	upstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_import_upstream_errors_total",
			Help: "Failed calls to external collaborators",
		},
		[]string{"collaborator"},
	)

	uploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_import_uploaded_bytes_total",
			Help: "Bytes written to object storage",
		},
	)
)

func normalizationPath(structured bool) string {
	if structured {
		return "structured"
	}
	return "fallback"
}
