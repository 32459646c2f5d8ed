package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

// Apply aplica los deltas como una unidad dentro de la transacción del caller.
// Deltas sobre la misma clave se suman. Las filas se bloquean en orden (producto, ubicación)
// y nada se escribe si alguna quedaría negativa. No registra en el libro; eso lo hace el caller.
func Apply(ctx context.Context, stockRepo repository.StockRepository, deltas []entity.StockDelta, now time.Time) ([]*entity.Stock, error) {
	net := make(map[entity.StockKey]int64, len(deltas))
	for _, d := range deltas {
		net[d.Key()] += d.Delta
	}
	keys := make([]entity.StockKey, 0, len(net))
	for k := range net {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	// Bloquear y validar todas las filas antes de escribir
	rows := make([]*entity.Stock, 0, len(keys))
	for _, k := range keys {
		stock, err := stockRepo.GetForUpdate(ctx, k.ProductID, k.LocationID)
		if err != nil {
			return nil, err
		}
		next := stock.Quantity + net[k]
		if next < 0 {
			return nil, fmt.Errorf("%w: producto %s en %s (disponible %d, requerido %d)",
				domain.ErrInsufficientStock, k.ProductID, k.LocationID, stock.Quantity, -net[k])
		}
		stock.Quantity = next
		rows = append(rows, stock)
	}

	for _, stock := range rows {
		stock.Version++
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// CheckAvailable verifica sin bloquear que cada (producto, ubicación) tenga al menos la cantidad pedida.
// Es un chequeo consultivo; la garantía la da Apply dentro de la transacción.
func CheckAvailable(ctx context.Context, stockRepo repository.StockRepository, need map[entity.StockKey]int64) error {
	keys := make([]entity.StockKey, 0, len(need))
	for k := range need {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, k := range keys {
		stock, err := stockRepo.Get(ctx, k.ProductID, k.LocationID)
		if err != nil {
			return err
		}
		if stock.Quantity < need[k] {
			return fmt.Errorf("%w: producto %s en %s (disponible %d, requerido %d)",
				domain.ErrInsufficientStock, k.ProductID, k.LocationID, stock.Quantity, need[k])
		}
	}
	return nil
}
