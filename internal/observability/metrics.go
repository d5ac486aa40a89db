package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the editorial workflow service.
// Metrics are organized by subsystem: papers, reviews, revisions, and HTTP.
// All counters and histograms are registered via promauto for automatic
// registration with the default Prometheus registry.
type Metrics struct {
	// PapersSubmitted counts the total number of manuscripts submitted.
	PapersSubmitted prometheus.Counter

	// PapersDeleted counts the total number of manuscripts withdrawn.
	PapersDeleted prometheus.Counter

	// StatusTransitions counts editorial status changes, labeled by from and to status.
	StatusTransitions *prometheus.CounterVec

	// PlagiarismScore observes the distribution of similarity scores at submission.
	PlagiarismScore prometheus.Histogram

	// ReviewsAssigned counts reviewer assignments.
	ReviewsAssigned prometheus.Counter

	// ReviewsCompleted counts submitted reviews, labeled by recommendation.
	ReviewsCompleted *prometheus.CounterVec

	// ReviewTurnaround observes the time from assignment to completion in hours.
	ReviewTurnaround prometheus.Histogram

	// RevisionsSubmitted counts revision submissions.
	RevisionsSubmitted prometheus.Counter

	// HTTPRequestsTotal counts HTTP requests, labeled by method, route, and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request duration in seconds, labeled by method and route.
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Papers
		PapersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_submitted_total",
			Help:      "Total number of manuscripts submitted",
		}),
		PapersDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_deleted_total",
			Help:      "Total number of manuscripts withdrawn",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Total number of editorial status transitions",
		}, []string{"from", "to"}),
		PlagiarismScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plagiarism_score",
			Help:      "Distribution of plagiarism similarity scores at submission",
			Buckets:   []float64{5, 10, 15, 20, 25, 30, 50, 100},
		}),

		// Reviews
		ReviewsAssigned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_assigned_total",
			Help:      "Total number of reviewer assignments",
		}),
		ReviewsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_completed_total",
			Help:      "Total number of completed reviews by recommendation",
		}, []string{"recommendation"}),
		ReviewTurnaround: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_turnaround_hours",
			Help:      "Time from reviewer assignment to review completion in hours",
			Buckets:   []float64{24, 72, 168, 336, 504, 720, 1440},
		}),

		// Revisions
		RevisionsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revisions_submitted_total",
			Help:      "Total number of manuscript revisions submitted",
		}),

		// HTTP
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
	}
}

// RecordPaperSubmitted records a manuscript submission and its plagiarism score.
func (m *Metrics) RecordPaperSubmitted(plagiarismScore float64) {
	m.PapersSubmitted.Inc()
	m.PlagiarismScore.Observe(plagiarismScore)
}

// RecordPaperDeleted records a manuscript withdrawal.
func (m *Metrics) RecordPaperDeleted() {
	m.PapersDeleted.Inc()
}

// RecordStatusTransition records an editorial status change.
func (m *Metrics) RecordStatusTransition(from, to string) {
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

// RecordReviewAssigned records a reviewer assignment.
func (m *Metrics) RecordReviewAssigned() {
	m.ReviewsAssigned.Inc()
}

// RecordReviewCompleted records a completed review.
func (m *Metrics) RecordReviewCompleted(recommendation string, turnaroundHours float64) {
	m.ReviewsCompleted.WithLabelValues(recommendation).Inc()
	m.ReviewTurnaround.Observe(turnaroundHours)
}

// RecordRevisionSubmitted records a revision submission.
func (m *Metrics) RecordRevisionSubmitted() {
	m.RevisionsSubmitted.Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
