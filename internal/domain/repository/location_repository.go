package repository

import (
	"context"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para bodegas y vans.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	// List filtra por tipo; kind vacío lista todas.
	List(ctx context.Context, kind string) ([]*entity.Location, error)
}
