package nordicdfu

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK      = "ok"
	resultError   = "error"
	resultBusy    = "busy"
	resultInvalid = "invalid"
)

type metrics struct {
	updates    *prometheus.CounterVec
	inProgress prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dfuhost_nordic_dfu_updates_total",
			Help: "startDfu calls by result",
		}, []string{"result"}),
		inProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dfuhost_nordic_dfu_in_progress_bool",
			Help: "Firmware update in progress (1=yes, 0=no)",
		}),
	}
}

func (m *metrics) observe(result string) {
	m.updates.WithLabelValues(result).Inc()
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.updates, m.inProgress}
}
