package repository

import (
	"context"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por producto+ubicación.
// Get y GetForUpdate devuelven cantidad 0 (no nil) cuando la fila aún no existe.
type StockRepository interface {
	Get(ctx context.Context, productID, locationID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción. Puede fallar con ErrContention.
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	ListByLocation(ctx context.Context, locationID string) ([]*entity.Stock, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error)
	ListAll(ctx context.Context) ([]*entity.Stock, error)
}
