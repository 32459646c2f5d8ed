package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByCode(ctx context.Context, code string) (*entity.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	// AdjustBalance suma delta (con signo) al saldo. ErrUnknownCustomer si no existe.
	AdjustBalance(ctx context.Context, customerID string, delta decimal.Decimal) error
	// Count total de clientes; base para el código automático.
	Count(ctx context.Context) (int, error)
}
