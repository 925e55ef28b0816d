package dioph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics wraps the Prometheus collectors a process embedding an Engine
// exposes for observability of the elimination core. A single set is
// registered per process (globalMetrics); Engine instances share it, the
// same way a MILP solver's LRA and dioph subsystems share one registry.
type metrics struct {
	checks          *prometheus.CounterVec
	gcdConflicts    prometheus.Counter
	tightenings     prometheus.Counter
	branchIterations prometheus.Histogram
}

func newMetrics() *metrics {
	return &metrics{
		checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dioph",
			Name:      "check_outcomes_total",
			Help:      "Count of Engine.Check results by outcome.",
		}, []string{"outcome"}),
		gcdConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "dioph",
			Name:      "gcd_conflicts_total",
			Help:      "Count of GCD-normalization conflicts raised while rewriting F.",
		}),
		tightenings: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "dioph",
			Name:      "tightenings_total",
			Help:      "Count of successful LRA column-bound tightenings from S-substitution.",
		}),
		branchIterations: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dioph",
			Name:      "branch_iterations",
			Help:      "Number of branch-and-bound iterations spent per Engine.Check call that reached branching.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

var globalMetrics = newMetrics()

func (m *metrics) observeCheck(o Outcome) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(o.String()).Inc()
}

func (m *metrics) observeGCDConflict() {
	if m == nil {
		return
	}
	m.gcdConflicts.Inc()
}

func (m *metrics) observeTightening() {
	if m == nil {
		return
	}
	m.tightenings.Inc()
}

func (m *metrics) observeBranchIterations(n int) {
	if m == nil {
		return
	}
	m.branchIterations.Observe(float64(n))
}
