package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

// NewEntry arma un asiento con id nuevo. Los deltas en cero se omiten.
func NewEntry(kind, referenceID, actorID string, at time.Time, deltas []entity.StockDelta) *entity.LedgerEntry {
	kept := make([]entity.StockDelta, 0, len(deltas))
	for _, d := range deltas {
		if d.Delta != 0 {
			kept = append(kept, d)
		}
	}
	return &entity.LedgerEntry{
		ID:          uuid.New().String(),
		Kind:        kind,
		ReferenceID: referenceID,
		ActorID:     actorID,
		Timestamp:   at,
		Deltas:      kept,
	}
}

// Service consultas de auditoría sobre el libro: reconstrucción y conciliación.
type Service struct {
	ledger    repository.LedgerRepository
	stock     repository.StockRepository
	products  repository.ProductRepository
	locations repository.LocationRepository
	now       func() time.Time
}

// NewService construye el servicio.
func NewService(
	ledgerRepo repository.LedgerRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) *Service {
	return &Service{
		ledger:    ledgerRepo,
		stock:     stockRepo,
		products:  productRepo,
		locations: locationRepo,
		now:       time.Now,
	}
}

// ReconstructQuantity reproduce el libro hasta asOf (cero = ahora) y devuelve la cantidad implicada
// junto con la cantidad viva del catálogo.
func (s *Service) ReconstructQuantity(ctx context.Context, actor entity.Actor, productID, locationID string, asOf time.Time) (*dto.QuantityResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	if productID == "" || locationID == "" {
		return nil, fmt.Errorf("%w: product_id y location_id requeridos", domain.ErrValidation)
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUnknownProduct
	}
	loc, err := s.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrUnknownLocation
	}
	qty, err := s.ledger.SumDeltas(ctx, productID, locationID, asOf)
	if err != nil {
		return nil, err
	}
	live, err := s.stock.Get(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	return &dto.QuantityResponse{
		ProductID:     productID,
		LocationID:    locationID,
		AsOf:          asOf,
		Reconstructed: qty,
		Live:          live.Quantity,
	}, nil
}

// Reconcile compara cada fila de stock vivo con la suma del libro. Sólo admin.
func (s *Service) Reconcile(ctx context.Context, actor entity.Actor) (*dto.ReconcileResponse, error) {
	if err := authz.Authorize(actor, authz.ActionReconcile); err != nil {
		return nil, err
	}
	mismatches, checked, err := s.mismatches(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.ReconcileResponse{
		Consistent: len(mismatches) == 0,
		Checked:    checked,
		Mismatches: make([]dto.MismatchResponse, 0, len(mismatches)),
	}
	for _, m := range mismatches {
		out.Mismatches = append(out.Mismatches, dto.MismatchResponse(m))
	}
	return out, nil
}

func (s *Service) mismatches(ctx context.Context) ([]entity.Mismatch, int, error) {
	totals, err := s.ledger.Totals(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.stock.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	keys := make(map[entity.StockKey]struct{}, len(rows)+len(totals))
	live := make(map[entity.StockKey]int64, len(rows))
	for _, r := range rows {
		live[r.Key()] = r.Quantity
		keys[r.Key()] = struct{}{}
	}
	for k := range totals {
		keys[k] = struct{}{}
	}

	var out []entity.Mismatch
	for k := range keys {
		if live[k] != totals[k] {
			out = append(out, entity.Mismatch{
				ProductID:     k.ProductID,
				LocationID:    k.LocationID,
				Live:          live[k],
				Reconstructed: totals[k],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return entity.StockKey{ProductID: out[i].ProductID, LocationID: out[i].LocationID}.Less(
			entity.StockKey{ProductID: out[j].ProductID, LocationID: out[j].LocationID})
	})
	return out, len(keys), nil
}

// ListEntries lista asientos del libro, más recientes primero.
func (s *Service) ListEntries(ctx context.Context, actor entity.Actor, in dto.LedgerListRequest) ([]dto.LedgerEntryResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := s.ledger.List(ctx, entity.LedgerFilter{
		Kind:        in.Kind,
		ReferenceID: in.ReferenceID,
		ProductID:   in.ProductID,
		LocationID:  in.LocationID,
		From:        in.From,
		To:          in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, ToEntryResponse(e))
	}
	return out, nil
}

// ToEntryResponse mapea un asiento a su DTO.
func ToEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	deltas := make([]dto.LedgerDeltaResponse, 0, len(e.Deltas))
	for _, d := range e.Deltas {
		deltas = append(deltas, dto.LedgerDeltaResponse(d))
	}
	return dto.LedgerEntryResponse{
		ID:          e.ID,
		Kind:        e.Kind,
		ReferenceID: e.ReferenceID,
		ActorID:     e.ActorID,
		Timestamp:   e.Timestamp,
		Note:        e.Note,
		Deltas:      deltas,
	}
}
