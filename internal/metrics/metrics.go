// Package metrics holds the prometheus collectors for the greeting service and the publisher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docgen"

// HTTPMetrics instruments the greeting service.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.Requests, m.Latency)
	return m
}

// Page outcomes.
const (
	PageCreated           = "created"
	PageUpdated           = "updated"
	PageConflictUpdated   = "conflict_updated"
	PageConflictRecreated = "conflict_recreated"
	PageFailed            = "failed"
)

// Summary outcomes.
const (
	SummaryOK     = "ok"
	SummaryFailed = "failed"
)

// Skip reasons.
const (
	SkipSuffix      = "suffix"
	SkipEmpty       = "empty"
	SkipTooLarge    = "too_large"
	SkipIgnored     = "ignored"
	SkipReadError   = "read_error"
	SkipParentFail  = "parent_failed"
	SkipSymlinkLoop = "symlink_loop"
)

// PublishMetrics instruments one publish run.
type PublishMetrics struct {
	Pages            *prometheus.CounterVec
	Summaries        *prometheus.CounterVec
	Skipped          *prometheus.CounterVec
	SummaryAttempts  prometheus.Counter
	PageStoreRetries prometheus.Counter
	LastRunSeconds   prometheus.Gauge
}

func NewPublishMetrics(reg prometheus.Registerer) *PublishMetrics {
	m := &PublishMetrics{
		Pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "pages_total",
			Help:      "Pages written to the document hub, by outcome.",
		}, []string{"outcome"}),
		Summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "summaries_total",
			Help:      "File summaries requested, by outcome.",
		}, []string{"outcome"}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "skipped_total",
			Help:      "Filesystem entries not published, by reason.",
		}, []string{"reason"}),
		SummaryAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "summarizer",
			Name:      "attempts_total",
			Help:      "Chat completion calls issued, retries included.",
		}),
		PageStoreRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pagestore",
			Name:      "retries_total",
			Help:      "Page write retries after transient failures.",
		}),
		LastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last publish run.",
		}),
	}
	reg.MustRegister(m.Pages, m.Summaries, m.Skipped, m.SummaryAttempts, m.PageStoreRetries, m.LastRunSeconds)
	return m
}

// NewNopPublishMetrics returns collectors bound to a throwaway registry.
func NewNopPublishMetrics() *PublishMetrics {
	return NewPublishMetrics(prometheus.NewRegistry())
}
