package repository

import (
	"context"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// TransferRepository define el puerto de persistencia para traslados.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	// UpdateStatus sólo cambia estado y datos de completado; las líneas son inmutables.
	UpdateStatus(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, filter entity.TransferFilter) ([]*entity.Transfer, error)
}
