// Package metrics holds the Prometheus instruments. Everything registers on
// the default registry; the server exposes it at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scoutfeed_pipeline_runs_total",
		Help: "Pipeline runs by terminal state.",
	}, []string{"state"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scoutfeed_pipeline_stage_duration_seconds",
		Help:    "Wall time per pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"stage"})

	ConnectorRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scoutfeed_connector_requests_total",
		Help: "Connector calls by platform and outcome.",
	}, []string{"platform", "outcome"})

	CandidatesDiscovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scoutfeed_candidates_discovered_total",
		Help: "Candidate resolutions by outcome (created, merged, reused, skipped).",
	}, []string{"outcome"})

	AlertsFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scoutfeed_alerts_fired_total",
		Help: "Alerts inserted by scan runs.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scoutfeed_http_requests_total",
		Help: "API requests by route and status code.",
	}, []string{"route", "code"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
