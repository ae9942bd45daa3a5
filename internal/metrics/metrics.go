package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservio",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservio",
			Name:      "reservations_total",
			Help:      "Reservation lifecycle transitions by status.",
		},
		[]string{"status"},
	)

	availabilityConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reservio",
			Name:      "availability_conflicts_total",
			Help:      "Reservation attempts rejected by the overlap check.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservations, availabilityConflicts)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservation counts a reservation entering the given status.
func IncReservation(status string) {
	reservations.WithLabelValues(status).Inc()
}

// IncAvailabilityConflict counts a lost booking race.
func IncAvailabilityConflict() {
	availabilityConflicts.Inc()
}
