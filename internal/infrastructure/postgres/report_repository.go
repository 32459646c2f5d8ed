package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para el dashboard.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// SalesTotals suma de totales y número de ventas en [from, to].
func (r *ReportRepo) SalesTotals(ctx context.Context, from, to time.Time) (repository.AmountCount, error) {
	return r.amountCount(ctx, "sales", "total", from, to)
}

// ReturnsTotals suma de reembolsos y número de devoluciones en [from, to].
func (r *ReportRepo) ReturnsTotals(ctx context.Context, from, to time.Time) (repository.AmountCount, error) {
	return r.amountCount(ctx, "sale_returns", "refund_total", from, to)
}

func (r *ReportRepo) amountCount(ctx context.Context, table, col string, from, to time.Time) (repository.AmountCount, error) {
	var f filter
	f.between("date", from, to)
	query := fmt.Sprintf(`SELECT COALESCE(SUM(%s), 0), COUNT(*) FROM %s`, col, table) + f.where()
	out := repository.AmountCount{Amount: decimal.Zero}
	if err := r.q.QueryRow(ctx, query, f.args...).Scan(&out.Amount, &out.Count); err != nil {
		return repository.AmountCount{}, fmt.Errorf("%s totals: %w", table, err)
	}
	return out, nil
}

// TransferCount número de traslados en [from, to].
func (r *ReportRepo) TransferCount(ctx context.Context, from, to time.Time) (int, error) {
	var f filter
	f.between("date", from, to)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transfers`+f.where(), f.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("transfer count: %w", err)
	}
	return n, nil
}

// LowStock filas con cantidad <= threshold, menor cantidad primero.
func (r *ReportRepo) LowStock(ctx context.Context, threshold int64) ([]repository.LowStockRow, error) {
	const query = `
	SELECT s.product_id, p.code, p.name, s.location_id, l.code, s.quantity
	FROM stock s
	JOIN products  p ON p.id = s.product_id
	JOIN locations l ON l.id = s.location_id
	WHERE s.quantity <= $1
	ORDER BY s.quantity, p.code, l.code`
	rows, err := r.q.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()
	out := make([]repository.LowStockRow, 0)
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(&row.ProductID, &row.ProductCode, &row.ProductName, &row.LocationID, &row.Location, &row.Quantity); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
