package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobwatch_pages_fetched_total",
		Help: "Site fetches by outcome.",
	}, []string{"result"})

	postingsKept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobwatch_postings_kept_total",
		Help: "Postings that passed the remote and full-stack filters.",
	})

	changesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobwatch_changes_detected_total",
		Help: "Sites whose fingerprint differed from the previous cycle.",
	})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobwatch_notifications_total",
		Help: "Notification attempts by outcome (sent, failed, disabled).",
	}, []string{"result"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobwatch_errors_total",
		Help: "Errors by type and component.",
	}, []string{"type", "component"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobwatch_cycle_duration_seconds",
		Help:    "Duration of a full check cycle.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})
)

func IncPagesCrawled(result string) {
	if result == "" {
		result = "unknown"
	}
	pagesFetched.WithLabelValues(result).Inc()
}

func AddPostingsKept(n int) {
	if n <= 0 {
		return
	}
	postingsKept.Add(float64(n))
}

func IncChangeDetected() {
	changesDetected.Inc()
}

func IncNotification(result string) {
	notifications.WithLabelValues(result).Inc()
}

func ObserveCycleDuration(seconds float64) {
	if seconds <= 0 {
		return
	}
	cycleDuration.Observe(seconds)
}

func IncError(errType, component string) {
	if errType == "" {
		errType = ErrorUnknown
	}
	if component == "" {
		component = "unknown"
	}
	errorsTotal.WithLabelValues(errType, component).Inc()
}
