// Package metrics holds the Prometheus collectors exported by movierec.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_index_build_duration_seconds",
			Help:    "Time spent building the similarity index",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	IndexBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_index_builds_total",
			Help: "Similarity index builds by outcome",
		},
		[]string{"result"}, // "ok", "error"
	)

	IndexMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_index_movies",
			Help: "Movies in the most recently built index",
		},
	)

	IndexVocabulary = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_index_vocabulary_terms",
			Help: "Vocabulary size of the most recently built index",
		},
	)

	SimilarQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_similar_queries_total",
			Help: "Similar-movie queries by outcome",
		},
		[]string{"result"}, // "ok", "not_found", "invalid"
	)

	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_poster_lookups_total",
			Help: "Poster lookups by source and outcome",
		},
		[]string{"source", "result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
