package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vanstock-api/internal/application/catalog"
	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ledger"
	"github.com/jhoicas/vanstock-api/internal/application/party"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/pricing"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
	"github.com/jhoicas/vanstock-api/pkg/logger"
)

// Service registra ventas desde una van: descuenta stock, actualiza el saldo del cliente
// y agrega el asiento al libro en una sola transacción.
type Service struct {
	exec      *ledger.Executor
	policy    pricing.Policy
	customers repository.CustomerRepository
	locations repository.LocationRepository
	products  repository.ProductRepository
	sales     repository.SaleRepository
	returns   repository.ReturnRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewService construye el servicio.
func NewService(
	exec *ledger.Executor,
	policy pricing.Policy,
	customerRepo repository.CustomerRepository,
	locationRepo repository.LocationRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	returnRepo repository.ReturnRepository,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		exec:      exec,
		policy:    policy,
		customers: customerRepo,
		locations: locationRepo,
		products:  productRepo,
		sales:     saleRepo,
		returns:   returnRepo,
		log:       log.Component("sales"),
		now:       time.Now,
	}
}

// CreateSale valida en orden cliente, van, productos y cantidades; calcula totales con la política
// de precios y confirma la venta. Ningún error deja cambios parciales.
func (s *Service) CreateSale(ctx context.Context, actor entity.Actor, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if err := authz.Authorize(actor, authz.ActionCreateSale); err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrUnknownCustomer
	}
	van, err := s.locations.GetByID(ctx, in.VanID)
	if err != nil {
		return nil, err
	}
	if van == nil || !van.IsVan() {
		return nil, domain.ErrUnknownVan
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene líneas", domain.ErrValidation)
	}

	lines := make([]entity.SaleLine, 0, len(in.Items))
	priced := make([]pricing.Line, 0, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if seen[item.ProductID] {
			return nil, fmt.Errorf("%w: producto %s repetido en la venta", domain.ErrValidation, item.ProductID)
		}
		seen[item.ProductID] = true

		price := product.UnitPrice
		if item.UnitPrice != nil {
			if err := pricing.ValidatePrice(*item.UnitPrice); err != nil {
				return nil, err
			}
			price = *item.UnitPrice
		}
		lines = append(lines, entity.SaleLine{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: price})
		priced = append(priced, pricing.Line{Quantity: item.Quantity, UnitPrice: price})
	}

	totals := s.policy.Compute(priced)
	for i := range lines {
		lines[i].Subtotal = totals.Lines[i].Subtotal
		lines[i].Discount = totals.Lines[i].Discount
	}
	payment, err := normalizePayment(in.Payment, totals.Total)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sale := &entity.Sale{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		VanID:      van.ID,
		Date:       now,
		Lines:      lines,
		Subtotal:   totals.Subtotal,
		Discount:   totals.Discount,
		Tax:        totals.Tax,
		Total:      totals.Total,
		Payment:    payment,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
	}
	sale.Number = entity.SaleNumber(now, sale.ID)

	deltas := make([]entity.StockDelta, 0, len(lines))
	for _, l := range lines {
		deltas = append(deltas, entity.StockDelta{ProductID: l.ProductID, LocationID: van.ID, Delta: -l.Quantity})
	}

	err = s.exec.Execute(ctx, entity.LedgerKindSale, func(ctx context.Context, repos ports.TxRepos) error {
		if _, err := catalog.Apply(ctx, repos.Stock, deltas, now); err != nil {
			return err
		}
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}
		if err := party.AdjustBalance(ctx, repos.Customers, sale.CustomerID, sale.Outstanding()); err != nil {
			return err
		}
		return repos.Ledger.Append(ctx, ledger.NewEntry(entity.LedgerKindSale, sale.ID, actor.UserID, now, deltas))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("kind", entity.LedgerKindSale).
		Str("transaction_id", sale.ID).
		Str("actor", actor.UserID).
		Str("number", sale.Number).
		Str("total", sale.Total.StringFixed(2)).
		Msg("venta registrada")
	return toSaleResponse(sale), nil
}

// normalizePayment valida el estado de pago contra el total ya redondeado.
func normalizePayment(in dto.PaymentRequest, total decimal.Decimal) (entity.PaymentInfo, error) {
	p := entity.PaymentInfo{Status: in.Status, Method: in.Method, AmountPaid: in.AmountPaid}
	if p.Status == "" {
		p.Status = entity.PaymentStatusPending
	}
	switch p.Status {
	case entity.PaymentStatusPending:
		p.AmountPaid = decimal.Zero
	case entity.PaymentStatusPaid:
		p.AmountPaid = total
	case entity.PaymentStatusPartial:
		if !p.AmountPaid.IsPositive() || !p.AmountPaid.LessThan(total) {
			return p, fmt.Errorf("%w: amount_paid debe estar entre 0 y el total en pago parcial", domain.ErrValidation)
		}
	default:
		return p, fmt.Errorf("%w: estado de pago %q", domain.ErrValidation, p.Status)
	}
	return p, nil
}

// GetSale obtiene una venta por ID.
func (s *Service) GetSale(ctx context.Context, actor entity.Actor, id string) (*dto.SaleResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrUnknownSale
	}
	return toSaleResponse(sale), nil
}

// ListSales lista ventas filtradas, más recientes primero.
func (s *Service) ListSales(ctx context.Context, actor entity.Actor, in dto.SaleListRequest) ([]dto.SaleResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := s.sales.List(ctx, entity.SaleFilter{
		CustomerID: in.CustomerID,
		VanID:      in.VanID,
		From:       in.From,
		To:         in.To,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, sale := range list {
		out = append(out, *toSaleResponse(sale))
	}
	return out, nil
}

// ReturnableQuantities cantidad aún devolvible por línea de la venta.
func (s *Service) ReturnableQuantities(ctx context.Context, actor entity.Actor, saleID string) ([]dto.ReturnableItem, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrUnknownSale
	}
	prior, err := s.returns.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	returned := ReturnedBySale(prior)
	out := make([]dto.ReturnableItem, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		out = append(out, dto.ReturnableItem{
			ProductID: l.ProductID,
			Sold:      l.Quantity,
			Returned:  returned[l.ProductID],
			Remaining: l.Quantity - returned[l.ProductID],
			UnitPrice: l.UnitPrice,
		})
	}
	return out, nil
}

// ReturnedBySale suma las cantidades ya devueltas por producto.
func ReturnedBySale(returns []*entity.SaleReturn) map[string]int64 {
	out := make(map[string]int64)
	for _, r := range returns {
		for _, l := range r.Lines {
			out[l.ProductID] += l.Quantity
		}
	}
	return out
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.SaleLineResponse(l))
	}
	return &dto.SaleResponse{
		ID:         s.ID,
		Number:     s.Number,
		CustomerID: s.CustomerID,
		VanID:      s.VanID,
		Date:       s.Date,
		Lines:      lines,
		Subtotal:   s.Subtotal,
		Discount:   s.Discount,
		Tax:        s.Tax,
		Total:      s.Total,
		Payment: dto.PaymentRequest{
			Status:     s.Payment.Status,
			Method:     s.Payment.Method,
			AmountPaid: s.Payment.AmountPaid,
		},
		CreatedBy: s.CreatedBy,
	}
}
