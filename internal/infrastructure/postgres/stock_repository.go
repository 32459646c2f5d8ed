package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una ubicación.
func (r *StockRepo) Get(ctx context.Context, productID, locationID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, location_id, quantity, version, updated_at
		FROM stock WHERE product_id = $1 AND location_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductID: productID, LocationID: locationID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Si aún no existe se crea en cero dentro de la
// misma transacción, así dos altas concurrentes sobre la misma clave también se serializan.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.Stock, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, location_id, quantity, version, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (product_id, location_id) DO NOTHING`, productID, locationID)
	if err != nil {
		return nil, mapError("ensure stock row", err)
	}
	query := `
		SELECT product_id, location_id, quantity, version, updated_at
		FROM stock WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		return nil, mapError("get stock for update", err)
	}
	return s, nil
}

// Upsert inserta o actualiza cantidad y versión (por producto y ubicación).
func (r *StockRepo) Upsert(ctx context.Context, s *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, location_id, quantity, version, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, version = EXCLUDED.version, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, s.ProductID, s.LocationID, s.Quantity, s.Version, s.UpdatedAt)
	return mapError("upsert stock", err)
}

// ListByLocation filas de una ubicación.
func (r *StockRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.Stock, error) {
	return r.list(ctx, ` WHERE location_id = $1`, locationID)
}

// ListByProduct filas de un producto.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error) {
	return r.list(ctx, ` WHERE product_id = $1`, productID)
}

// ListAll todas las filas.
func (r *StockRepo) ListAll(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(ctx, ``)
}

func (r *StockRepo) list(ctx context.Context, where string, args ...any) ([]*entity.Stock, error) {
	query := `SELECT product_id, location_id, quantity, version, updated_at FROM stock` + where +
		` ORDER BY product_id, location_id`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Stock, 0)
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	if err := row.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.Version, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
