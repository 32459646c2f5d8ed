package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ledger"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/pricing"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
	"github.com/jhoicas/vanstock-api/pkg/logger"
)

// Service catálogo: productos, ubicaciones y cantidades por ubicación.
// Las cantidades sólo cambian vía transacciones (venta, devolución, traslado) o AdjustStock.
type Service struct {
	products  repository.ProductRepository
	locations repository.LocationRepository
	stock     repository.StockRepository
	exec      *ledger.Executor
	log       *logger.Logger
	now       func() time.Time
}

// NewService construye el servicio.
func NewService(
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	stockRepo repository.StockRepository,
	exec *ledger.Executor,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		products:  productRepo,
		locations: locationRepo,
		stock:     stockRepo,
		exec:      exec,
		log:       log.Component("catalog"),
		now:       time.Now,
	}
}

// CreateProduct crea un producto (sólo admin).
func (s *Service) CreateProduct(ctx context.Context, actor entity.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := authz.Authorize(actor, authz.ActionManageProducts); err != nil {
		return nil, err
	}
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" || in.Name == "" || strings.TrimSpace(in.UnitMeasure) == "" {
		return nil, fmt.Errorf("%w: code, name y unit_measure requeridos", domain.ErrValidation)
	}
	if err := pricing.ValidatePrice(in.UnitPrice); err != nil {
		return nil, err
	}
	existing, err := s.products.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCode
	}
	now := s.now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Barcode:     in.Barcode,
		Name:        in.Name,
		Category:    in.Category,
		UnitMeasure: strings.TrimSpace(in.UnitMeasure),
		UnitPrice:   in.UnitPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// UpdateProduct actualiza datos y precio (sólo admin). No afecta ventas ya registradas.
func (s *Service) UpdateProduct(ctx context.Context, actor entity.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := authz.Authorize(actor, authz.ActionManageProducts); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrUnknownProduct
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name vacío", domain.ErrValidation)
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Barcode != nil {
		product.Barcode = *in.Barcode
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.UnitMeasure != nil {
		product.UnitMeasure = *in.UnitMeasure
	}
	if in.UnitPrice != nil {
		if err := pricing.ValidatePrice(*in.UnitPrice); err != nil {
			return nil, err
		}
		product.UnitPrice = *in.UnitPrice
	}
	product.UpdatedAt = s.now()
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetProduct obtiene un producto por ID.
func (s *Service) GetProduct(ctx context.Context, actor entity.Actor, id string) (*dto.ProductResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrUnknownProduct
	}
	return toProductResponse(product), nil
}

// ListProducts lista productos, opcionalmente por categoría.
func (s *Service) ListProducts(ctx context.Context, actor entity.Actor, category string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := s.products.List(ctx, category, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// CreateLocation registra una van o bodega (sólo admin).
func (s *Service) CreateLocation(ctx context.Context, actor entity.Actor, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if err := authz.Authorize(actor, authz.ActionManageLocations); err != nil {
		return nil, err
	}
	in.Code = strings.TrimSpace(in.Code)
	if in.Code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: code y name requeridos", domain.ErrValidation)
	}
	if !entity.ValidLocationKind(in.Kind) {
		return nil, fmt.Errorf("%w: kind debe ser warehouse o van", domain.ErrValidation)
	}
	if in.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity negativa", domain.ErrValidation)
	}
	now := s.now()
	loc := &entity.Location{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Name:      strings.TrimSpace(in.Name),
		Kind:      in.Kind,
		Capacity:  in.Capacity,
		Driver:    in.Driver,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// GetLocation obtiene una ubicación por ID.
func (s *Service) GetLocation(ctx context.Context, actor entity.Actor, id string) (*dto.LocationResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrUnknownLocation
	}
	return toLocationResponse(loc), nil
}

// ListLocations lista ubicaciones; kind vacío devuelve todas.
func (s *Service) ListLocations(ctx context.Context, actor entity.Actor, kind string) ([]dto.LocationResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	if kind != "" && !entity.ValidLocationKind(kind) {
		return nil, fmt.Errorf("%w: kind %q", domain.ErrValidation, kind)
	}
	list, err := s.locations.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *toLocationResponse(l))
	}
	return out, nil
}

// GetQuantity cantidad disponible de un producto en una ubicación (0 si nunca tuvo stock).
func (s *Service) GetQuantity(ctx context.Context, actor entity.Actor, productID, locationID string) (*dto.StockResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	product, loc, err := s.resolve(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	stock, err := s.stock.Get(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	return toStockResponse(stock, product, loc), nil
}

// ListStockAt stock de todos los productos en una ubicación (detalle de van).
func (s *Service) ListStockAt(ctx context.Context, actor entity.Actor, locationID string) ([]dto.StockResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	loc, err := s.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrUnknownLocation
	}
	rows, err := s.stock.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(rows))
	for _, r := range rows {
		product, err := s.products.GetByID(ctx, r.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toStockResponse(r, product, loc))
	}
	return out, nil
}

// StockByProduct stock de un producto en todas las ubicaciones.
func (s *Service) StockByProduct(ctx context.Context, actor entity.Actor, productID string) ([]dto.StockResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrUnknownProduct
	}
	rows, err := s.stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(rows))
	for _, r := range rows {
		loc, err := s.locations.GetByID(ctx, r.LocationID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toStockResponse(r, product, loc))
	}
	return out, nil
}

// AdjustStock ajuste manual (sólo admin): aplica el delta y registra un asiento adjustment
// en la misma transacción, de modo que el libro sigue reconstruyendo el stock vivo.
func (s *Service) AdjustStock(ctx context.Context, actor entity.Actor, in dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	if err := authz.Authorize(actor, authz.ActionAdjustStock); err != nil {
		return nil, err
	}
	if in.Delta == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: reason requerido", domain.ErrValidation)
	}
	product, loc, err := s.resolve(ctx, in.ProductID, in.LocationID)
	if err != nil {
		return nil, err
	}

	var (
		row   *entity.Stock
		entry *entity.LedgerEntry
	)
	err = s.exec.Execute(ctx, entity.LedgerKindAdjustment, func(ctx context.Context, repos ports.TxRepos) error {
		now := s.now()
		delta := []entity.StockDelta{{ProductID: in.ProductID, LocationID: in.LocationID, Delta: in.Delta}}
		rows, err := Apply(ctx, repos.Stock, delta, now)
		if err != nil {
			return err
		}
		entry = ledger.NewEntry(entity.LedgerKindAdjustment, uuid.New().String(), actor.UserID, now, delta)
		entry.Note = strings.TrimSpace(in.Reason)
		if err := repos.Ledger.Append(ctx, entry); err != nil {
			return err
		}
		row = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("kind", entity.LedgerKindAdjustment).
		Str("transaction_id", entry.ReferenceID).
		Str("actor", actor.UserID).
		Int64("delta", in.Delta).
		Msg("ajuste de stock registrado")
	return &dto.AdjustStockResponse{
		Stock:         *toStockResponse(row, product, loc),
		LedgerEntryID: entry.ID,
	}, nil
}

func (s *Service) resolve(ctx context.Context, productID, locationID string) (*entity.Product, *entity.Location, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrUnknownProduct
	}
	loc, err := s.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, nil, err
	}
	if loc == nil {
		return nil, nil, domain.ErrUnknownLocation
	}
	return product, loc, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Barcode:     p.Barcode,
		Name:        p.Name,
		Category:    p.Category,
		UnitMeasure: p.UnitMeasure,
		UnitPrice:   p.UnitPrice,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:        l.ID,
		Code:      l.Code,
		Name:      l.Name,
		Kind:      l.Kind,
		Capacity:  l.Capacity,
		Driver:    l.Driver,
		CreatedAt: l.CreatedAt,
	}
}

func toStockResponse(s *entity.Stock, p *entity.Product, l *entity.Location) *dto.StockResponse {
	out := &dto.StockResponse{
		ProductID:  s.ProductID,
		LocationID: s.LocationID,
		Quantity:   s.Quantity,
		UpdatedAt:  s.UpdatedAt,
	}
	if p != nil {
		out.ProductCode = p.Code
		out.ProductName = p.Name
	}
	if l != nil {
		out.LocationCode = l.Code
	}
	return out
}
