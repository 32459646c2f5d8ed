package party

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

// Intentos para encontrar un código automático libre.
const autoCodeAttempts = 5

// Service directorio de clientes y su saldo pendiente.
type Service struct {
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	returns   repository.ReturnRepository
	now       func() time.Time
}

// NewService construye el servicio.
func NewService(
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
	returnRepo repository.ReturnRepository,
) *Service {
	return &Service{customers: customerRepo, sales: saleRepo, returns: returnRepo, now: time.Now}
}

// Create registra un cliente. Sin código se asigna CUST-NNN con el siguiente número.
func (s *Service) Create(ctx context.Context, actor entity.Actor, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := authz.Authorize(actor, authz.ActionCreateCustomer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name requerido", domain.ErrValidation)
	}
	now := s.now()
	c := &entity.Customer{
		ID:        uuid.New().String(),
		Code:      strings.TrimSpace(in.Code),
		Name:      strings.TrimSpace(in.Name),
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Code != "" {
		if err := s.customers.Create(ctx, c); err != nil {
			return nil, err
		}
		return toCustomerResponse(c), nil
	}

	n, err := s.customers.Count(ctx)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= autoCodeAttempts; i++ {
		c.Code = fmt.Sprintf("CUST-%03d", n+i)
		err = s.customers.Create(ctx, c)
		if err == nil {
			return toCustomerResponse(c), nil
		}
		if !errors.Is(err, domain.ErrDuplicateCode) {
			return nil, err
		}
	}
	return nil, err
}

// Get obtiene un cliente por ID.
func (s *Service) Get(ctx context.Context, actor entity.Actor, id string) (*dto.CustomerResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrUnknownCustomer
	}
	return toCustomerResponse(c), nil
}

// List lista clientes con paginación.
func (s *Service) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.CustomerListResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := s.customers.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCustomerResponse(c))
	}
	return &dto.CustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// AdjustBalance suma delta al saldo del cliente dentro de la transacción del caller.
func AdjustBalance(ctx context.Context, customers repository.CustomerRepository, customerID string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	return customers.AdjustBalance(ctx, customerID, delta)
}

// RecomputeBalance recalcula el saldo desde las ventas (porción no pagada) menos los reembolsos
// a crédito, y lo compara con el guardado.
func (s *Service) RecomputeBalance(ctx context.Context, actor entity.Actor, customerID string) (*dto.BalanceAuditResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrUnknownCustomer
	}
	sales, err := s.sales.List(ctx, entity.SaleFilter{CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	returns, err := s.returns.List(ctx, entity.ReturnFilter{CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	recomputed := decimal.Zero
	for _, sale := range sales {
		recomputed = recomputed.Add(sale.Outstanding())
	}
	for _, r := range returns {
		if r.RefundMode == entity.RefundModeCredit {
			recomputed = recomputed.Sub(r.RefundTotal)
		}
	}
	return &dto.BalanceAuditResponse{
		CustomerID: customerID,
		Stored:     c.Balance,
		Recomputed: recomputed,
		Consistent: c.Balance.Equal(recomputed),
	}, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		Balance:   c.Balance,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
