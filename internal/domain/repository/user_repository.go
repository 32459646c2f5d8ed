package repository

import (
	"context"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// CreateFirstAdmin inserta user sólo si no existe ningún admin; si ya hay uno, ErrAdminExists.
	// La verificación y el alta son un único paso atómico.
	CreateFirstAdmin(ctx context.Context, user *entity.User) error
}
