package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

const returnColumns = `id, sale_id, customer_id, van_id, date, reason, refund_mode, refund_total, created_by, created_at`

// ReturnRepo devoluciones sobre PostgreSQL (usable con pool o tx).
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create persiste la devolución y sus líneas.
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.SaleReturn) error {
	query := `INSERT INTO sale_returns (` + returnColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.SaleID, ret.CustomerID, ret.VanID, ret.Date, ret.Reason, ret.RefundMode, ret.RefundTotal,
		ret.CreatedBy, ret.CreatedAt,
	)
	if err != nil {
		return mapError("insert return", err)
	}
	for i, l := range ret.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO return_lines (return_id, line_no, product_id, quantity, unit_price, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			ret.ID, i+1, l.ProductID, l.Quantity, l.UnitPrice, l.Amount,
		)
		if err != nil {
			return mapError("insert return line", err)
		}
	}
	return nil
}

// GetByID obtiene una devolución por ID.
func (r *ReturnRepo) GetByID(ctx context.Context, id string) (*entity.SaleReturn, error) {
	ret, err := scanReturn(r.q.QueryRow(ctx, `SELECT `+returnColumns+` FROM sale_returns WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.SaleReturn{ret}); err != nil {
		return nil, err
	}
	return ret, nil
}

// ListBySale devoluciones de una venta, en orden de creación.
func (r *ReturnRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.SaleReturn, error) {
	return r.list(ctx, ` WHERE sale_id = $1 ORDER BY created_at, id`, saleID)
}

// List devoluciones más recientes primero.
func (r *ReturnRepo) List(ctx context.Context, rf entity.ReturnFilter) ([]*entity.SaleReturn, error) {
	var f filter
	f.eq("sale_id", rf.SaleID)
	f.eq("customer_id", rf.CustomerID)
	f.between("date", rf.From, rf.To)
	return r.list(ctx, f.where()+` ORDER BY date DESC, id`+f.page(rf.Limit, rf.Offset), f.args...)
}

func (r *ReturnRepo) list(ctx context.Context, tail string, args ...any) ([]*entity.SaleReturn, error) {
	rows, err := r.q.Query(ctx, `SELECT `+returnColumns+` FROM sale_returns`+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.SaleReturn, 0)
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		list = append(list, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ReturnRepo) loadLines(ctx context.Context, rets []*entity.SaleReturn) error {
	if len(rets) == 0 {
		return nil
	}
	byID := make(map[string]*entity.SaleReturn, len(rets))
	ids := make([]string, 0, len(rets))
	for _, ret := range rets {
		byID[ret.ID] = ret
		ids = append(ids, ret.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT return_id, product_id, quantity, unit_price, amount
		FROM return_lines WHERE return_id = ANY($1) ORDER BY return_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list return lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var l entity.ReturnLine
		if err := rows.Scan(&id, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Amount); err != nil {
			return fmt.Errorf("scan return line: %w", err)
		}
		ret := byID[id]
		ret.Lines = append(ret.Lines, l)
	}
	return rows.Err()
}

func scanReturn(row pgx.Row) (*entity.SaleReturn, error) {
	var ret entity.SaleReturn
	err := row.Scan(&ret.ID, &ret.SaleID, &ret.CustomerID, &ret.VanID, &ret.Date, &ret.Reason,
		&ret.RefundMode, &ret.RefundTotal, &ret.CreatedBy, &ret.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}
