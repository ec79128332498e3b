// Package observability exposes Prometheus metrics for the recommendation core.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Decision paths for served recommendations.
const (
	PathColdStart = "cold_start"
	PathSearch    = "search"
	PathFallback  = "fallback"
)

var (
	recommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "engine",
		Name:      "recommendations_total",
		Help:      "Recommendation requests served, labelled by decision path.",
	}, []string{"path"})

	searchFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "engine",
		Name:      "search_fallbacks_total",
		Help:      "Structured searches that degraded to the cold-start path.",
	})

	instructorFlagsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "moderation",
		Name:      "instructor_flags_total",
		Help:      "Automatic instructor flag transitions applied.",
	})

	feedbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "ledger",
		Name:      "feedback_total",
		Help:      "Feedback rows recorded, labelled by direction.",
	}, []string{"direction"})
)

func init() {
	prometheus.MustRegister(recommendationsTotal, searchFallbackTotal, instructorFlagsTotal, feedbackTotal)
}

// RecordRecommendation counts one served request for the given path.
func RecordRecommendation(path string) {
	recommendationsTotal.WithLabelValues(path).Inc()
}

// RecordSearchFallback counts one search-to-cold-start degradation.
func RecordSearchFallback() {
	searchFallbackTotal.Inc()
}

// RecordInstructorFlagged counts one automatic flag transition.
func RecordInstructorFlagged() {
	instructorFlagsTotal.Inc()
}

// RecordFeedback counts one recorded feedback row.
func RecordFeedback(value int) {
	direction := "up"
	if value < 0 {
		direction = "down"
	}
	feedbackTotal.WithLabelValues(direction).Inc()
}
