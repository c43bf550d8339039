// Package metrics exposes the Prometheus collectors of the ledger engine.
// Collectors are registered on the default registry and served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// Budget check outcomes.
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
)

var (
	// budgetChecks counts guard evaluations.
	// Labels: outcome (allowed, rejected)
	budgetChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "budget",
		Name:      "checks_total",
		Help:      "Budget invariant evaluations by outcome",
	}, []string{"outcome"})

	// goalContributions counts committed goal contributions.
	goalContributions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "goals",
		Name:      "contributions_total",
		Help:      "Goal contributions committed",
	})

	// rollupDuration measures how long a rollup view takes to compute.
	// Labels: view (overview, monthly, categories, top_categories, dashboard, analytics)
	rollupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rollup",
		Name:      "duration_seconds",
		Help:      "Rollup computation latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"view"})

	// httpRequests counts served requests.
	// Labels: method, route (gin full path), status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served",
	}, []string{"method", "route", "status"})

	// httpDuration measures request latency.
	// Labels: method, route
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// RecordBudgetCheck counts one guard evaluation.
func RecordBudgetCheck(allowed bool) {
	outcome := OutcomeRejected
	if allowed {
		outcome = OutcomeAllowed
	}
	budgetChecks.WithLabelValues(outcome).Inc()
}

// RecordContribution counts one committed contribution.
func RecordContribution() {
	goalContributions.Inc()
}

// ObserveRollup records the time elapsed since start for a rollup view.
func ObserveRollup(view string, start time.Time) {
	rollupDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route, status string, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
