// Package metrics expone las métricas Prometheus de las transacciones de stock.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/vanstock-api/internal/application/ports"
)

var _ ports.TxMetrics = (*Metrics)(nil)

const namespace = "vanstock"

// Metrics colectores de transacciones del libro.
type Metrics struct {
	registry     *prometheus.Registry
	transactions *prometheus.CounterVec
	retries      *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New registra los colectores en un registry propio (más los del proceso y el runtime de Go).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transacciones de stock por tipo y resultado.",
		}, []string{"kind", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contention_retries_total",
			Help:      "Reintentos por contención de bloqueos.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_duration_seconds",
			Help:      "Duración de las transacciones de stock, reintentos incluidos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.transactions, m.retries, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTransaction registra el resultado y la duración de una transacción.
func (m *Metrics) ObserveTransaction(kind, outcome string, elapsed time.Duration) {
	m.transactions.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// IncContentionRetry cuenta un reintento por contención.
func (m *Metrics) IncContentionRetry(kind string) {
	m.retries.WithLabelValues(kind).Inc()
}

// Handler handler HTTP de /metrics sobre el registry propio.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
