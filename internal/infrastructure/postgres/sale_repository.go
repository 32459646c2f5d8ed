package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, number, customer_id, van_id, date, subtotal, discount, tax, total,
	payment_status, payment_method, amount_paid, created_by, created_at`

// SaleRepo implementación de SaleRepository (usable con pool o tx).
// Create debe correr dentro de una tx para que cabecera y líneas queden juntas.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera y sus líneas.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.Number, sale.CustomerID, sale.VanID, sale.Date,
		sale.Subtotal, sale.Discount, sale.Tax, sale.Total,
		sale.Payment.Status, sale.Payment.Method, sale.Payment.AmountPaid,
		sale.CreatedBy, sale.CreatedAt,
	)
	if err != nil {
		return mapError("insert sale", err)
	}
	for i, l := range sale.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_lines (sale_id, line_no, product_id, quantity, unit_price, discount, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sale.ID, i+1, l.ProductID, l.Quantity, l.UnitPrice, l.Discount, l.Subtotal,
		)
		if err != nil {
			return mapError("insert sale line", err)
		}
	}
	return nil
}

// GetByID obtiene la venta completa por ID.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera hasta el fin de la transacción.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) getOne(ctx context.Context, query, id string) (*entity.Sale, error) {
	sale, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get sale", err)
	}
	if err := r.loadLines(ctx, []*entity.Sale{sale}); err != nil {
		return nil, err
	}
	return sale, nil
}

// List ventas más recientes primero.
func (r *SaleRepo) List(ctx context.Context, sf entity.SaleFilter) ([]*entity.Sale, error) {
	var f filter
	f.eq("customer_id", sf.CustomerID)
	f.eq("van_id", sf.VanID)
	f.between("date", sf.From, sf.To)
	query := `SELECT ` + saleColumns + ` FROM sales` + f.where() + ` ORDER BY date DESC, id` + f.page(sf.Limit, sf.Offset)
	rows, err := r.q.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
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

// loadLines carga las líneas de varias ventas en una sola consulta.
func (r *SaleRepo) loadLines(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Sale, len(sales))
	ids := make([]string, 0, len(sales))
	for _, s := range sales {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT sale_id, product_id, quantity, unit_price, discount, subtotal
		FROM sale_lines WHERE sale_id = ANY($1) ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var saleID string
		var l entity.SaleLine
		if err := rows.Scan(&saleID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Discount, &l.Subtotal); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		s := byID[saleID]
		s.Lines = append(s.Lines, l)
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.Number, &s.CustomerID, &s.VanID, &s.Date,
		&s.Subtotal, &s.Discount, &s.Tax, &s.Total,
		&s.Payment.Status, &s.Payment.Method, &s.Payment.AmountPaid,
		&s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
