package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro append-only en memoria.
type LedgerRepo struct {
	s  *Store
	tx *memTx
}

func (r *LedgerRepo) Append(_ context.Context, e *entity.LedgerEntry) error {
	if r.tx != nil {
		r.tx.ledger = append(r.tx.ledger, cloneEntry(e))
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ledger = append(r.s.ledger, cloneEntry(e))
	return nil
}

// List más recientes primero.
func (r *LedgerRepo) List(_ context.Context, f entity.LedgerFilter) ([]*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	out := make([]*entity.LedgerEntry, 0)
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		e := r.s.ledger[i]
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		if f.ReferenceID != "" && e.ReferenceID != f.ReferenceID {
			continue
		}
		if !inRange(e.Timestamp, f.From, f.To) {
			continue
		}
		if (f.ProductID != "" || f.LocationID != "") && !touches(e, f.ProductID, f.LocationID) {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	r.s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return paginate(out, f.Limit, f.Offset), nil
}

func touches(e *entity.LedgerEntry, productID, locationID string) bool {
	for _, d := range e.Deltas {
		if (productID == "" || d.ProductID == productID) && (locationID == "" || d.LocationID == locationID) {
			return true
		}
	}
	return false
}

func (r *LedgerRepo) SumDeltas(_ context.Context, productID, locationID string, asOf time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sum int64
	for _, e := range r.s.ledger {
		if e.Timestamp.After(asOf) {
			continue
		}
		for _, d := range e.Deltas {
			if d.ProductID == productID && d.LocationID == locationID {
				sum += d.Delta
			}
		}
	}
	return sum, nil
}

func (r *LedgerRepo) Totals(_ context.Context) (map[entity.StockKey]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[entity.StockKey]int64)
	for _, e := range r.s.ledger {
		for _, d := range e.Deltas {
			out[d.Key()] += d.Delta
		}
	}
	return out, nil
}
