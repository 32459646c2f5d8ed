package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregados de lectura sobre el arena.
type ReportRepo struct{ s *Store }

func (r *ReportRepo) SalesTotals(_ context.Context, from, to time.Time) (repository.AmountCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := repository.AmountCount{Amount: decimal.Zero}
	for _, sale := range r.s.sales {
		if inRange(sale.Date, from, to) {
			out.Amount = out.Amount.Add(sale.Total)
			out.Count++
		}
	}
	return out, nil
}

func (r *ReportRepo) ReturnsTotals(_ context.Context, from, to time.Time) (repository.AmountCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := repository.AmountCount{Amount: decimal.Zero}
	for _, ret := range r.s.returns {
		if inRange(ret.Date, from, to) {
			out.Amount = out.Amount.Add(ret.RefundTotal)
			out.Count++
		}
	}
	return out, nil
}

func (r *ReportRepo) TransferCount(_ context.Context, from, to time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, t := range r.s.transfers {
		if inRange(t.Date, from, to) {
			n++
		}
	}
	return n, nil
}

// LowStock filas con cantidad <= threshold, menor cantidad primero.
func (r *ReportRepo) LowStock(_ context.Context, threshold int64) ([]repository.LowStockRow, error) {
	r.s.mu.RLock()
	out := make([]repository.LowStockRow, 0)
	for k, st := range r.s.stock {
		if st.Quantity > threshold {
			continue
		}
		row := repository.LowStockRow{ProductID: k.ProductID, LocationID: k.LocationID, Quantity: st.Quantity}
		if p, ok := r.s.products[k.ProductID]; ok {
			row.ProductCode, row.ProductName = p.Code, p.Name
		}
		if l, ok := r.s.locations[k.LocationID]; ok {
			row.Location = l.Code
		}
		out = append(out, row)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		if out[i].ProductCode != out[j].ProductCode {
			return out[i].ProductCode < out[j].ProductCode
		}
		return out[i].Location < out[j].Location
	})
	return out, nil
}
