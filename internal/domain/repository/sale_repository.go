package repository

import (
	"context"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas (cabecera + líneas).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la venta; serializa devoluciones concurrentes contra la misma venta.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, filter entity.SaleFilter) ([]*entity.Sale, error)
}
