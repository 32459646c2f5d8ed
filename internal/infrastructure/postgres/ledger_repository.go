package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de movimientos sobre PostgreSQL. Sólo inserta; nunca actualiza ni borra.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append persiste el asiento y sus deltas.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ledger_entries (id, kind, reference_id, actor_id, ts, note)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Kind, e.ReferenceID, e.ActorID, e.Timestamp, e.Note,
	)
	if err != nil {
		return mapError("append ledger entry", err)
	}
	for _, d := range e.Deltas {
		_, err := r.q.Exec(ctx, `
			INSERT INTO ledger_deltas (entry_id, product_id, location_id, delta)
			VALUES ($1, $2, $3, $4)`, e.ID, d.ProductID, d.LocationID, d.Delta)
		if err != nil {
			return mapError("append ledger delta", err)
		}
	}
	return nil
}

// List asientos más recientes primero.
func (r *LedgerRepo) List(ctx context.Context, lf entity.LedgerFilter) ([]*entity.LedgerEntry, error) {
	var f filter
	f.eq("e.kind", lf.Kind)
	f.eq("e.reference_id", lf.ReferenceID)
	f.between("e.ts", lf.From, lf.To)
	switch {
	case lf.ProductID != "" && lf.LocationID != "":
		f.add(`EXISTS (SELECT 1 FROM ledger_deltas d WHERE d.entry_id = e.id AND d.product_id = ? AND d.location_id = ?)`,
			lf.ProductID, lf.LocationID)
	case lf.ProductID != "":
		f.add(`EXISTS (SELECT 1 FROM ledger_deltas d WHERE d.entry_id = e.id AND d.product_id = ?)`, lf.ProductID)
	case lf.LocationID != "":
		f.add(`EXISTS (SELECT 1 FROM ledger_deltas d WHERE d.entry_id = e.id AND d.location_id = ?)`, lf.LocationID)
	}
	query := `SELECT e.id, e.kind, e.reference_id, e.actor_id, e.ts, e.note FROM ledger_entries e` +
		f.where() + ` ORDER BY e.ts DESC, e.seq DESC` + f.page(lf.Limit, lf.Offset)
	rows, err := r.q.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.LedgerEntry, 0)
	byID := make(map[string]*entity.LedgerEntry)
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.ReferenceID, &e.ActorID, &e.Timestamp, &e.Note); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if len(list) == 0 {
		return list, nil
	}
	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	drows, err := r.q.Query(ctx, `
		SELECT entry_id, product_id, location_id, delta
		FROM ledger_deltas WHERE entry_id = ANY($1) ORDER BY product_id, location_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list ledger deltas: %w", err)
	}
	defer drows.Close()
	for drows.Next() {
		var id string
		var d entity.StockDelta
		if err := drows.Scan(&id, &d.ProductID, &d.LocationID, &d.Delta); err != nil {
			return nil, fmt.Errorf("scan ledger delta: %w", err)
		}
		e := byID[id]
		e.Deltas = append(e.Deltas, d)
	}
	return list, drows.Err()
}

// SumDeltas suma los deltas de la clave hasta asOf inclusive.
func (r *LedgerRepo) SumDeltas(ctx context.Context, productID, locationID string, asOf time.Time) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(d.delta), 0)::BIGINT
		FROM ledger_deltas d JOIN ledger_entries e ON e.id = d.entry_id
		WHERE d.product_id = $1 AND d.location_id = $2 AND e.ts <= $3`,
		productID, locationID, asOf).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum ledger deltas: %w", err)
	}
	return sum, nil
}

// Totals suma de deltas por clave para todo el libro.
func (r *LedgerRepo) Totals(ctx context.Context) (map[entity.StockKey]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, location_id, SUM(delta)::BIGINT
		FROM ledger_deltas GROUP BY product_id, location_id`)
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	out := make(map[entity.StockKey]int64)
	var k entity.StockKey
	var sum int64
	_, err = pgx.ForEachRow(rows, []any{&k.ProductID, &k.LocationID, &sum}, func() error {
		out[k] = sum
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan ledger totals: %w", err)
	}
	return out, nil
}
