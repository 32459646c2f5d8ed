package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.StockRepository    = (*StockRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.productCodes[p.Code]; ok {
		return domain.ErrDuplicateCode
	}
	r.s.products[p.ID] = cloneProduct(p)
	r.s.productCodes[p.Code] = p.ID
	return nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrUnknownProduct
	}
	if old.Code != p.Code {
		if _, taken := r.s.productCodes[p.Code]; taken {
			return domain.ErrDuplicateCode
		}
		delete(r.s.productCodes, old.Code)
		r.s.productCodes[p.Code] = p.ID
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.products[id]; ok {
		return cloneProduct(p), nil
	}
	return nil, nil
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	r.s.mu.RLock()
	id, ok := r.s.productCodes[code]
	r.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) List(_ context.Context, category string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if category == "" || p.Category == category {
			out = append(out, cloneProduct(p))
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, limit, offset), nil
}

// LocationRepo vans y bodegas en memoria.
type LocationRepo struct{ s *Store }

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locationCodes[l.Code]; ok {
		return domain.ErrDuplicateCode
	}
	r.s.locations[l.ID] = cloneLocation(l)
	r.s.locationCodes[l.Code] = l.ID
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if l, ok := r.s.locations[id]; ok {
		return cloneLocation(l), nil
	}
	return nil, nil
}

func (r *LocationRepo) List(_ context.Context, kind string) ([]*entity.Location, error) {
	r.s.mu.RLock()
	out := make([]*entity.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		if kind == "" || l.Kind == kind {
			out = append(out, cloneLocation(l))
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// StockRepo filas de stock. Dentro de una tx, GetForUpdate toma el bloqueo de la clave y las
// escrituras quedan pendientes hasta el commit.
type StockRepo struct {
	s  *Store
	tx *memTx
}

func (r *StockRepo) Get(_ context.Context, productID, locationID string) (*entity.Stock, error) {
	key := entity.StockKey{ProductID: productID, LocationID: locationID}
	if r.tx != nil {
		if st, ok := r.tx.stock[key]; ok {
			return cloneStock(st), nil
		}
	}
	return r.s.readStock(key), nil
}

func (r *StockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.Stock, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, stockLockKey(productID, locationID)); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, productID, locationID)
}

func (r *StockRepo) Upsert(_ context.Context, st *entity.Stock) error {
	if st.Quantity < 0 {
		return domain.ErrInsufficientStock
	}
	if r.tx != nil {
		r.tx.stock[st.Key()] = cloneStock(st)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stock[st.Key()] = cloneStock(st)
	return nil
}

func (r *StockRepo) ListByLocation(_ context.Context, locationID string) ([]*entity.Stock, error) {
	return r.s.listStock(func(st *entity.Stock) bool { return st.LocationID == locationID }), nil
}

func (r *StockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Stock, error) {
	return r.s.listStock(func(st *entity.Stock) bool { return st.ProductID == productID }), nil
}

func (r *StockRepo) ListAll(_ context.Context) ([]*entity.Stock, error) {
	return r.s.listStock(func(*entity.Stock) bool { return true }), nil
}

func (s *Store) readStock(key entity.StockKey) *entity.Stock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.stock[key]; ok {
		return cloneStock(st)
	}
	return &entity.Stock{ProductID: key.ProductID, LocationID: key.LocationID}
}

func (s *Store) listStock(keep func(*entity.Stock) bool) []*entity.Stock {
	s.mu.RLock()
	out := make([]*entity.Stock, 0)
	for _, st := range s.stock {
		if keep(st) {
			out = append(out, cloneStock(st))
		}
	}
	s.mu.RUnlock()
	sortStock(out)
	return out
}
