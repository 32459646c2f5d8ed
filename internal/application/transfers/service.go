package transfers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/vanstock-api/internal/application/catalog"
	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ledger"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
	"github.com/jhoicas/vanstock-api/pkg/logger"
)

// Service traslados entre ubicaciones (van a van, o bodega a van).
// Un traslado completado descuenta del origen y suma al destino como una unidad;
// uno pendiente sólo registra la intención.
type Service struct {
	exec      *ledger.Executor
	locations repository.LocationRepository
	products  repository.ProductRepository
	stock     repository.StockRepository
	transfers repository.TransferRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewService construye el servicio.
func NewService(
	exec *ledger.Executor,
	locationRepo repository.LocationRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		exec:      exec,
		locations: locationRepo,
		products:  productRepo,
		stock:     stockRepo,
		transfers: transferRepo,
		log:       log.Component("transfers"),
		now:       time.Now,
	}
}

// CreateTransfer crea un traslado. Status vacío equivale a completed.
func (s *Service) CreateTransfer(ctx context.Context, actor entity.Actor, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if err := authz.Authorize(actor, authz.ActionCreateTransfer); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = entity.TransferStatusCompleted
	}
	if status != entity.TransferStatusPending && status != entity.TransferStatusCompleted {
		return nil, fmt.Errorf("%w: status %q", domain.ErrValidation, in.Status)
	}
	if in.SourceID == in.DestinationID {
		return nil, domain.ErrSameLocation
	}
	for _, id := range []string{in.SourceID, in.DestinationID} {
		loc, err := s.locations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownLocation, id)
		}
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el traslado no tiene líneas", domain.ErrValidation)
	}
	lines := make([]entity.TransferLine, 0, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, item.ProductID)
		}
		if seen[item.ProductID] {
			return nil, fmt.Errorf("%w: producto %s repetido en el traslado", domain.ErrValidation, item.ProductID)
		}
		seen[item.ProductID] = true
		lines = append(lines, entity.TransferLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	now := s.now()
	t := &entity.Transfer{
		ID:            uuid.New().String(),
		SourceID:      in.SourceID,
		DestinationID: in.DestinationID,
		Lines:         lines,
		Status:        status,
		Date:          now,
		CreatedBy:     actor.UserID,
		CreatedAt:     now,
	}

	var err error
	if status == entity.TransferStatusPending {
		// Chequeo consultivo: el stock se valida de nuevo con bloqueo al completar
		need := make(map[entity.StockKey]int64, len(lines))
		for _, l := range lines {
			need[entity.StockKey{ProductID: l.ProductID, LocationID: t.SourceID}] += l.Quantity
		}
		if err := catalog.CheckAvailable(ctx, s.stock, need); err != nil {
			return nil, err
		}
		err = s.exec.Execute(ctx, entity.LedgerKindTransfer, func(ctx context.Context, repos ports.TxRepos) error {
			return repos.Transfers.Create(ctx, t)
		})
	} else {
		t.CompletedAt = &now
		t.CompletedBy = actor.UserID
		err = s.exec.Execute(ctx, entity.LedgerKindTransfer, func(ctx context.Context, repos ports.TxRepos) error {
			deltas, err := move(ctx, repos, t, now)
			if err != nil {
				return err
			}
			if err := repos.Transfers.Create(ctx, t); err != nil {
				return err
			}
			return repos.Ledger.Append(ctx, ledger.NewEntry(entity.LedgerKindTransfer, t.ID, actor.UserID, now, deltas))
		})
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("kind", entity.LedgerKindTransfer).
		Str("transaction_id", t.ID).
		Str("actor", actor.UserID).
		Str("status", t.Status).
		Msg("traslado registrado")
	return toTransferResponse(t), nil
}

// CompleteTransfer aplica un traslado pendiente. Una segunda llamada falla con ErrAlreadyCompleted
// sin tocar el stock.
func (s *Service) CompleteTransfer(ctx context.Context, actor entity.Actor, id string) (*dto.TransferResponse, error) {
	if err := authz.Authorize(actor, authz.ActionCompleteTransfer); err != nil {
		return nil, err
	}
	var t *entity.Transfer
	err := s.exec.Execute(ctx, entity.LedgerKindTransfer, func(ctx context.Context, repos ports.TxRepos) error {
		var err error
		t, err = repos.Transfers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrUnknownTransfer
		}
		if t.IsCompleted() {
			return domain.ErrAlreadyCompleted
		}
		now := s.now()
		deltas, err := move(ctx, repos, t, now)
		if err != nil {
			return err
		}
		t.Status = entity.TransferStatusCompleted
		t.CompletedAt = &now
		t.CompletedBy = actor.UserID
		if err := repos.Transfers.UpdateStatus(ctx, t); err != nil {
			return err
		}
		return repos.Ledger.Append(ctx, ledger.NewEntry(entity.LedgerKindTransfer, t.ID, actor.UserID, now, deltas))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("kind", entity.LedgerKindTransfer).
		Str("transaction_id", t.ID).
		Str("actor", actor.UserID).
		Msg("traslado completado")
	return toTransferResponse(t), nil
}

// move aplica ambos tramos del traslado como una unidad y devuelve los deltas aplicados.
func move(ctx context.Context, repos ports.TxRepos, t *entity.Transfer, now time.Time) ([]entity.StockDelta, error) {
	deltas := make([]entity.StockDelta, 0, 2*len(t.Lines))
	for _, l := range t.Lines {
		deltas = append(deltas,
			entity.StockDelta{ProductID: l.ProductID, LocationID: t.SourceID, Delta: -l.Quantity},
			entity.StockDelta{ProductID: l.ProductID, LocationID: t.DestinationID, Delta: l.Quantity},
		)
	}
	if _, err := catalog.Apply(ctx, repos.Stock, deltas, now); err != nil {
		return nil, err
	}
	return deltas, nil
}

// GetTransfer obtiene un traslado por ID.
func (s *Service) GetTransfer(ctx context.Context, actor entity.Actor, id string) (*dto.TransferResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	t, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrUnknownTransfer
	}
	return toTransferResponse(t), nil
}

// ListTransfers lista traslados filtrados.
func (s *Service) ListTransfers(ctx context.Context, actor entity.Actor, in dto.TransferListRequest) ([]dto.TransferResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := s.transfers.List(ctx, entity.TransferFilter{
		LocationID: in.LocationID,
		Status:     in.Status,
		From:       in.From,
		To:         in.To,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTransferResponse(t))
	}
	return out, nil
}

func toTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	items := make([]dto.TransferItemRequest, 0, len(t.Lines))
	for _, l := range t.Lines {
		items = append(items, dto.TransferItemRequest(l))
	}
	return &dto.TransferResponse{
		ID:            t.ID,
		SourceID:      t.SourceID,
		DestinationID: t.DestinationID,
		Items:         items,
		Status:        t.Status,
		Date:          t.Date,
		CompletedAt:   t.CompletedAt,
		CreatedBy:     t.CreatedBy,
	}
}
