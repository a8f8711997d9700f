package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// WorkflowStepsTotal counts report workflow steps by step name and outcome.
	WorkflowStepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rescueradar",
		Name:      "workflow_steps_total",
		Help:      "Report workflow steps, labeled by step and result.",
	}, []string{"step", "result"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rescueradar",
		Name:      "http_requests_total",
		Help:      "HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rescueradar",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "route"})

	WebSocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rescueradar",
		Name:      "websocket_clients",
		Help:      "Connected live feed clients.",
	})

	EventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rescueradar",
		Name:      "events_published_total",
		Help:      "Report events handed to the broker, labeled by result.",
	}, []string{"result"})
)

// Register registers the service metrics with the default registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			WorkflowStepsTotal,
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			WebSocketClients,
			EventsPublishedTotal,
		)
	})
}

// ObserveStep records one workflow step outcome.
func ObserveStep(step string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	WorkflowStepsTotal.WithLabelValues(step, result).Inc()
}
