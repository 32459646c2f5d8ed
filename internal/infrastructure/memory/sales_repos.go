package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository     = (*SaleRepo)(nil)
	_ repository.ReturnRepository   = (*ReturnRepo)(nil)
	_ repository.TransferRepository = (*TransferRepo)(nil)
)

// SaleRepo ventas en memoria.
type SaleRepo struct {
	s  *Store
	tx *memTx
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if r.tx != nil {
		r.tx.sales = append(r.tx.sales, cloneSale(sale))
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	if r.tx != nil {
		for _, sale := range r.tx.sales {
			if sale.ID == id {
				return cloneSale(sale), nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if sale, ok := r.s.sales[id]; ok {
		return cloneSale(sale), nil
	}
	return nil, nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, "sale:"+id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) List(_ context.Context, f entity.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	out := make([]*entity.Sale, 0)
	for _, sale := range r.s.sales {
		if f.CustomerID != "" && sale.CustomerID != f.CustomerID {
			continue
		}
		if f.VanID != "" && sale.VanID != f.VanID {
			continue
		}
		if !inRange(sale.Date, f.From, f.To) {
			continue
		}
		out = append(out, cloneSale(sale))
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return paginate(out, f.Limit, f.Offset), nil
}

// ReturnRepo devoluciones en memoria.
type ReturnRepo struct {
	s  *Store
	tx *memTx
}

func (r *ReturnRepo) Create(_ context.Context, ret *entity.SaleReturn) error {
	if r.tx != nil {
		r.tx.returns = append(r.tx.returns, cloneReturn(ret))
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.returns[ret.ID] = cloneReturn(ret)
	r.s.returnsBySale[ret.SaleID] = append(r.s.returnsBySale[ret.SaleID], ret.ID)
	return nil
}

func (r *ReturnRepo) GetByID(_ context.Context, id string) (*entity.SaleReturn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if ret, ok := r.s.returns[id]; ok {
		return cloneReturn(ret), nil
	}
	return nil, nil
}

// ListBySale incluye las devoluciones pendientes de la tx actual.
func (r *ReturnRepo) ListBySale(_ context.Context, saleID string) ([]*entity.SaleReturn, error) {
	r.s.mu.RLock()
	out := make([]*entity.SaleReturn, 0, len(r.s.returnsBySale[saleID]))
	for _, id := range r.s.returnsBySale[saleID] {
		out = append(out, cloneReturn(r.s.returns[id]))
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for _, ret := range r.tx.returns {
			if ret.SaleID == saleID {
				out = append(out, cloneReturn(ret))
			}
		}
	}
	return out, nil
}

func (r *ReturnRepo) List(_ context.Context, f entity.ReturnFilter) ([]*entity.SaleReturn, error) {
	r.s.mu.RLock()
	out := make([]*entity.SaleReturn, 0)
	for _, ret := range r.s.returns {
		if f.SaleID != "" && ret.SaleID != f.SaleID {
			continue
		}
		if f.CustomerID != "" && ret.CustomerID != f.CustomerID {
			continue
		}
		if !inRange(ret.Date, f.From, f.To) {
			continue
		}
		out = append(out, cloneReturn(ret))
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return paginate(out, f.Limit, f.Offset), nil
}

// TransferRepo traslados en memoria.
type TransferRepo struct {
	s  *Store
	tx *memTx
}

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	if r.tx != nil {
		r.tx.transfers[t.ID] = cloneTransfer(t)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	if r.tx != nil {
		if t, ok := r.tx.transfers[id]; ok {
			return cloneTransfer(t), nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if t, ok := r.s.transfers[id]; ok {
		return cloneTransfer(t), nil
	}
	return nil, nil
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, "transfer:"+id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) UpdateStatus(ctx context.Context, t *entity.Transfer) error {
	current, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrUnknownTransfer
	}
	current.Status = t.Status
	current.CompletedAt = t.CompletedAt
	current.CompletedBy = t.CompletedBy
	if r.tx != nil {
		r.tx.transfers[t.ID] = current
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transfers[t.ID] = current
	return nil
}

func (r *TransferRepo) List(_ context.Context, f entity.TransferFilter) ([]*entity.Transfer, error) {
	r.s.mu.RLock()
	out := make([]*entity.Transfer, 0)
	for _, t := range r.s.transfers {
		if f.LocationID != "" && t.SourceID != f.LocationID && t.DestinationID != f.LocationID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if !inRange(t.Date, f.From, f.To) {
			continue
		}
		out = append(out, cloneTransfer(t))
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return paginate(out, f.Limit, f.Offset), nil
}
