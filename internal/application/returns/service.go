package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/vanstock-api/internal/application/catalog"
	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ledger"
	"github.com/jhoicas/vanstock-api/internal/application/party"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/application/sales"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/pricing"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
	"github.com/jhoicas/vanstock-api/pkg/logger"
)

// Service registra devoluciones contra ventas. El stock vuelve a la van de la venta y el
// reembolso usa el precio unitario de la línea original.
type Service struct {
	exec    *ledger.Executor
	policy  pricing.Policy
	returns repository.ReturnRepository
	log     *logger.Logger
	now     func() time.Time
}

// NewService construye el servicio.
func NewService(exec *ledger.Executor, policy pricing.Policy, returnRepo repository.ReturnRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{exec: exec, policy: policy, returns: returnRepo, log: log.Component("returns"), now: time.Now}
}

// CreateReturn valida contra la venta bloqueada (tope acumulado por línea) y confirma la devolución.
func (s *Service) CreateReturn(ctx context.Context, actor entity.Actor, in dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	if err := authz.Authorize(actor, authz.ActionCreateReturn); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason requerido", domain.ErrValidation)
	}
	if !entity.ValidRefundMode(in.RefundMode) {
		return nil, fmt.Errorf("%w: refund_mode %q", domain.ErrValidation, in.RefundMode)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la devolución no tiene líneas", domain.ErrValidation)
	}
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if seen[item.ProductID] {
			return nil, fmt.Errorf("%w: producto %s repetido en la devolución", domain.ErrValidation, item.ProductID)
		}
		seen[item.ProductID] = true
	}

	ret := &entity.SaleReturn{
		ID:         uuid.New().String(),
		SaleID:     in.SaleID,
		Reason:     reason,
		RefundMode: in.RefundMode,
		CreatedBy:  actor.UserID,
	}

	err := s.exec.Execute(ctx, entity.LedgerKindReturn, func(ctx context.Context, repos ports.TxRepos) error {
		// La venta bloqueada serializa devoluciones concurrentes contra ella
		sale, err := repos.Sales.GetForUpdate(ctx, in.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrUnknownSale
		}
		prior, err := repos.Returns.ListBySale(ctx, sale.ID)
		if err != nil {
			return err
		}
		returned := sales.ReturnedBySale(prior)

		lines := make([]entity.ReturnLine, 0, len(in.Items))
		priced := make([]pricing.Line, 0, len(in.Items))
		deltas := make([]entity.StockDelta, 0, len(in.Items))
		for _, item := range in.Items {
			line := sale.Line(item.ProductID)
			if line == nil {
				return fmt.Errorf("%w: %s", domain.ErrItemNotInSale, item.ProductID)
			}
			remaining := line.Quantity - returned[item.ProductID]
			if item.Quantity > remaining {
				return fmt.Errorf("%w: producto %s (pendiente %d, solicitado %d)",
					domain.ErrOverReturn, item.ProductID, remaining, item.Quantity)
			}
			lines = append(lines, entity.ReturnLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: line.UnitPrice,
				Amount:    s.policy.Round(line.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))),
			})
			priced = append(priced, pricing.Line{Quantity: item.Quantity, UnitPrice: line.UnitPrice})
			deltas = append(deltas, entity.StockDelta{ProductID: item.ProductID, LocationID: sale.VanID, Delta: item.Quantity})
		}

		now := s.now()
		ret.CustomerID = sale.CustomerID
		ret.VanID = sale.VanID
		ret.Date = now
		ret.CreatedAt = now
		ret.Lines = lines
		ret.RefundTotal = s.policy.Refund(priced)

		if _, err := catalog.Apply(ctx, repos.Stock, deltas, now); err != nil {
			return err
		}
		if err := repos.Returns.Create(ctx, ret); err != nil {
			return err
		}
		if ret.RefundMode == entity.RefundModeCredit {
			if err := party.AdjustBalance(ctx, repos.Customers, ret.CustomerID, ret.RefundTotal.Neg()); err != nil {
				return err
			}
		}
		return repos.Ledger.Append(ctx, ledger.NewEntry(entity.LedgerKindReturn, ret.ID, actor.UserID, now, deltas))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("kind", entity.LedgerKindReturn).
		Str("transaction_id", ret.ID).
		Str("actor", actor.UserID).
		Str("sale_id", ret.SaleID).
		Str("refund", ret.RefundTotal.StringFixed(2)).
		Msg("devolución registrada")
	return toReturnResponse(ret), nil
}

// GetReturn obtiene una devolución por ID.
func (s *Service) GetReturn(ctx context.Context, actor entity.Actor, id string) (*dto.ReturnResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	r, err := s.returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrUnknownReturn
	}
	return toReturnResponse(r), nil
}

// ListReturns lista devoluciones filtradas.
func (s *Service) ListReturns(ctx context.Context, actor entity.Actor, in dto.ReturnListRequest) ([]dto.ReturnResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := s.returns.List(ctx, entity.ReturnFilter{
		SaleID:     in.SaleID,
		CustomerID: in.CustomerID,
		From:       in.From,
		To:         in.To,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toReturnResponse(r))
	}
	return out, nil
}

func toReturnResponse(r *entity.SaleReturn) *dto.ReturnResponse {
	lines := make([]dto.ReturnLineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, dto.ReturnLineResponse(l))
	}
	return &dto.ReturnResponse{
		ID:          r.ID,
		SaleID:      r.SaleID,
		CustomerID:  r.CustomerID,
		VanID:       r.VanID,
		Date:        r.Date,
		Lines:       lines,
		Reason:      r.Reason,
		RefundMode:  r.RefundMode,
		RefundTotal: r.RefundTotal,
		CreatedBy:   r.CreatedBy,
	}
}
