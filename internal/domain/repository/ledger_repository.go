package repository

import (
	"context"
	"time"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// LedgerRepository libro de movimientos append-only. No hay Update ni Delete.
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	List(ctx context.Context, filter entity.LedgerFilter) ([]*entity.LedgerEntry, error)
	// SumDeltas suma los deltas de (producto, ubicación) con Timestamp <= asOf.
	SumDeltas(ctx context.Context, productID, locationID string, asOf time.Time) (int64, error)
	// Totals suma de deltas por clave para todo el libro.
	Totals(ctx context.Context) (map[entity.StockKey]int64, error)
}
