package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing, so tests can run without touching a registry.
type Metrics struct {
	MutationsTotal       *prometheus.CounterVec
	SnapshotSaves        *prometheus.CounterVec
	SnapshotSaveDuration prometheus.Histogram
	OrdersByStatus       *prometheus.GaugeVec
}

// NewMetrics creates and registers all application metrics on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Total number of store mutations by operation and outcome",
		}, []string{"operation", "status"}),
		SnapshotSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Total number of snapshot writes by outcome",
		}, []string{"status"}),
		SnapshotSaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_save_duration_seconds",
			Help:      "Time spent writing snapshots",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		OrdersByStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orders_by_status",
			Help:      "Current number of orders in each lifecycle status",
		}, []string{"status"}),
	}
}

func (m *Metrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.MutationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) ObserveSnapshotSave(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SnapshotSaves.WithLabelValues(status).Inc()
	m.SnapshotSaveDuration.Observe(d.Seconds())
}

func (m *Metrics) SetOrderStatusCount(status string, n int) {
	if m == nil {
		return
	}
	m.OrdersByStatus.WithLabelValues(status).Set(float64(n))
}
