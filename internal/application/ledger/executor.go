package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/pkg/config"
	"github.com/jhoicas/vanstock-api/pkg/logger"
)

// Executor ejecuta transacciones de stock con reintento acotado ante ErrContention.
// Cualquier otro error se propaga en el primer intento.
type Executor struct {
	tx       ports.TxRunner
	metrics  ports.TxMetrics
	log      *logger.Logger
	attempts int
	base     time.Duration
}

// NewExecutor construye el ejecutor. metrics y log pueden ser nil.
func NewExecutor(tx ports.TxRunner, cfg config.LedgerConfig, metrics ports.TxMetrics, log *logger.Logger) *Executor {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := cfg.RetryBase
	if base <= 0 {
		base = 25 * time.Millisecond
	}
	return &Executor{tx: tx, metrics: metrics, log: log.Component("ledger"), attempts: attempts, base: base}
}

// Execute corre fn en una transacción. kind etiqueta métricas y logs (sale, return, transfer, adjustment).
func (e *Executor) Execute(ctx context.Context, kind string, fn func(ctx context.Context, repos ports.TxRepos) error) error {
	start := time.Now()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = e.base
	eb.MaxInterval = 20 * e.base
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(e.attempts-1)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := e.tx.Run(ctx, fn)
		if err == nil || domain.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		e.metrics.IncContentionRetry(kind)
		e.log.Warn().Err(err).Str("kind", kind).Int("attempt", attempt).Dur("wait", wait).Msg("contención, reintentando")
	}

	err := backoff.RetryNotify(op, policy, notify)
	e.metrics.ObserveTransaction(kind, outcomeOf(err), time.Since(start))
	if err != nil && domain.IsRetryable(err) {
		e.log.Warn().Err(err).Str("kind", kind).Int("attempts", attempt).Msg("contención persistente")
	}
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return ports.OutcomeCommitted
	case errors.Is(err, domain.ErrContention):
		return ports.OutcomeContention
	case domain.KindOf(err) != nil:
		return ports.OutcomeRejected
	}
	return ports.OutcomeError
}
