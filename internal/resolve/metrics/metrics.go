package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the resolution pipeline.
type Metrics struct {
	Resolutions        *prometheus.CounterVec
	RateLimited        prometheus.Counter
	ResolutionDuration prometheus.Histogram
	CandidatesReturned prometheus.Histogram
}

// New creates a Metrics instance with all resolution metrics registered.
func New() *Metrics {
	return &Metrics{
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "steeple_resolutions_total",
			Help: "Total resolution attempts by outcome",
		}, []string{"outcome"}),
		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "steeple_rate_limited_total",
			Help: "Total requests rejected by the rate limiter",
		}),
		ResolutionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "steeple_resolution_duration_seconds",
			Help:    "Duration of full resolution attempts (embedding + search + arbitration)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CandidatesReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "steeple_candidates_returned",
			Help:    "Number of candidates the similarity search produced per query",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		}),
	}
}

// IncrementResolution records one completed attempt by outcome
// (matched, no_match, failed).
func (m *Metrics) IncrementResolution(outcome string) {
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// IncrementRateLimited records a rejected admission.
func (m *Metrics) IncrementRateLimited() {
	m.RateLimited.Inc()
}

// ObserveResolution records the duration of a resolution attempt.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveResolution(start time.Time) {
	m.ResolutionDuration.Observe(time.Since(start).Seconds())
}

// ObserveCandidates records the candidate count for one query.
func (m *Metrics) ObserveCandidates(n int) {
	m.CandidatesReturned.Observe(float64(n))
}
