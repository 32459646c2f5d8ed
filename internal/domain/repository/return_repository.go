package repository

import (
	"context"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// ReturnRepository define el puerto de persistencia para devoluciones.
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.SaleReturn) error
	GetByID(ctx context.Context, id string) (*entity.SaleReturn, error)
	ListBySale(ctx context.Context, saleID string) ([]*entity.SaleReturn, error)
	List(ctx context.Context, filter entity.ReturnFilter) ([]*entity.SaleReturn, error)
}
