package ports

import "time"

// Resultados de una transacción para métricas.
const (
	OutcomeCommitted  = "committed"
	OutcomeRejected   = "rejected"
	OutcomeContention = "contention"
	OutcomeError      = "error"
)

// TxMetrics puerto de métricas de transacciones del libro. El adaptador Prometheus lo implementa.
type TxMetrics interface {
	ObserveTransaction(kind, outcome string, elapsed time.Duration)
	IncContentionRetry(kind string)
}

// NopMetrics descarta las métricas.
type NopMetrics struct{}

func (NopMetrics) ObserveTransaction(string, string, time.Duration) {}
func (NopMetrics) IncContentionRetry(string)                       {}
