package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo clientes en memoria. AdjustBalance dentro de una tx se acumula y aplica al commit.
type CustomerRepo struct {
	s  *Store
	tx *memTx
}

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customerCodes[c.Code]; ok {
		return domain.ErrDuplicateCode
	}
	r.s.customers[c.ID] = cloneCustomer(c)
	r.s.customerCodes[c.Code] = c.ID
	return nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.RLock()
	c, ok := r.s.customers[id]
	if !ok {
		r.s.mu.RUnlock()
		return nil, nil
	}
	out := cloneCustomer(c)
	r.s.mu.RUnlock()
	if r.tx != nil {
		out.Balance = out.Balance.Add(r.tx.balances[id])
	}
	return out, nil
}

func (r *CustomerRepo) GetByCode(ctx context.Context, code string) (*entity.Customer, error) {
	r.s.mu.RLock()
	id, ok := r.s.customerCodes[code]
	r.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *CustomerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	r.s.mu.RLock()
	out := make([]*entity.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		out = append(out, cloneCustomer(c))
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, limit, offset), nil
}

func (r *CustomerRepo) AdjustBalance(_ context.Context, customerID string, delta decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[customerID]
	if !ok {
		return domain.ErrUnknownCustomer
	}
	if r.tx != nil {
		r.tx.balances[customerID] = r.tx.balances[customerID].Add(delta)
		return nil
	}
	c.Balance = c.Balance.Add(delta)
	return nil
}

func (r *CustomerRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.customers), nil
}
