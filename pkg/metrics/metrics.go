package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the client
type Metrics struct {
	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	StoreActions    *prometheus.CounterVec
}

// New creates and registers all collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		GatewayRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_gateway_requests_total",
			Help: "Requests sent to the clinic backend, by outcome",
		}, []string{"method", "resource", "outcome"}),
		GatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_gateway_request_duration_seconds",
			Help:    "Latency of requests sent to the clinic backend",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource"}),
		StoreActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_store_actions_total",
			Help: "Store actions executed, by outcome",
		}, []string{"store", "action", "outcome"}),
	}
}

// ObserveRequest records one backend call. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(method, resource, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(method, resource, outcome).Inc()
	m.GatewayDuration.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}

// ObserveAction records one store action. Safe on a nil receiver.
func (m *Metrics) ObserveAction(store, action string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.StoreActions.WithLabelValues(store, action, outcome).Inc()
}
