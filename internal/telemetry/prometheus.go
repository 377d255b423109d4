package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromSink exports telemetry events as Prometheus metrics.
type PromSink struct {
	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	degradedTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPromSink registers the collectors on the given registerer and returns
// the sink. Passing nil registers on the default registry.
func NewPromSink(namespace string, reg prometheus.Registerer) *PromSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PromSink{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Total provider bundle requests by provider and operation",
			},
			[]string{"provider", "operation"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total provider request failures by error kind",
			},
			[]string{"provider", "operation", "kind"},
		),
		degradedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "data_degraded_total",
				Help:      "Total degraded-data events by aspect",
			},
			[]string{"provider", "aspect"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Provider bundle request duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"provider", "operation"},
		),
	}
}

func (s *PromSink) RequestStarted(e Event) {
	s.requestsTotal.WithLabelValues(e.Provider, e.Operation).Inc()
}

func (s *PromSink) RequestSucceeded(e SuccessEvent) {
	s.requestDuration.WithLabelValues(e.Provider, e.Operation).Observe(e.Duration.Seconds())
}

func (s *PromSink) RequestFailed(e ErrorEvent) {
	s.errorsTotal.WithLabelValues(e.Provider, e.Operation, e.ErrorKind).Inc()
	s.requestDuration.WithLabelValues(e.Provider, e.Operation).Observe(e.Duration.Seconds())
}

func (s *PromSink) DataDegraded(e DegradedEvent) {
	s.degradedTotal.WithLabelValues(e.Provider, e.Aspect).Inc()
}
