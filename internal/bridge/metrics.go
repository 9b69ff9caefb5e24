package bridge

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "sr25519_bridge"

type metrics struct {
	liveHandles prometheus.Gauge
	operations  *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		liveHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "live_handles",
			Help:      "Number of key handles currently owned by callers.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Bridge operations by name and outcome.",
		}, []string{"operation", "outcome"}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.liveHandles, m.operations} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}
