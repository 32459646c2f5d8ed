package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, source_id, destination_id, status, date, completed_at, created_by, completed_by, created_at`

// TransferRepo traslados sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste el traslado y sus líneas.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `INSERT INTO transfers (` + transferColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.SourceID, t.DestinationID, t.Status, t.Date, t.CompletedAt, t.CreatedBy, t.CompletedBy, t.CreatedAt,
	)
	if err != nil {
		return mapError("insert transfer", err)
	}
	for i, l := range t.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_lines (transfer_id, line_no, product_id, quantity)
			VALUES ($1, $2, $3, $4)`, t.ID, i+1, l.ProductID, l.Quantity)
		if err != nil {
			return mapError("insert transfer line", err)
		}
	}
	return nil
}

// GetByID obtiene un traslado por ID.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate bloquea el traslado; dos completados concurrentes se serializan aquí.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) getOne(ctx context.Context, query, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get transfer", err)
	}
	if err := r.loadLines(ctx, []*entity.Transfer{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus cambia estado y datos de completado.
func (r *TransferRepo) UpdateStatus(ctx context.Context, t *entity.Transfer) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE transfers SET status = $2, completed_at = $3, completed_by = $4 WHERE id = $1`,
		t.ID, t.Status, t.CompletedAt, t.CompletedBy)
	if err != nil {
		return mapError("update transfer", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUnknownTransfer
	}
	return nil
}

// List traslados más recientes primero; LocationID coincide con origen o destino.
func (r *TransferRepo) List(ctx context.Context, tf entity.TransferFilter) ([]*entity.Transfer, error) {
	var f filter
	if tf.LocationID != "" {
		f.add("(source_id = ? OR destination_id = ?)", tf.LocationID, tf.LocationID)
	}
	f.eq("status", tf.Status)
	f.between("date", tf.From, tf.To)
	query := `SELECT ` + transferColumns + ` FROM transfers` + f.where() + ` ORDER BY date DESC, id` + f.page(tf.Limit, tf.Offset)
	rows, err := r.q.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Transfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
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

func (r *TransferRepo) loadLines(ctx context.Context, ts []*entity.Transfer) error {
	if len(ts) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Transfer, len(ts))
	ids := make([]string, 0, len(ts))
	for _, t := range ts {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT transfer_id, product_id, quantity
		FROM transfer_lines WHERE transfer_id = ANY($1) ORDER BY transfer_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var l entity.TransferLine
		if err := rows.Scan(&id, &l.ProductID, &l.Quantity); err != nil {
			return fmt.Errorf("scan transfer line: %w", err)
		}
		t := byID[id]
		t.Lines = append(t.Lines, l)
	}
	return rows.Err()
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(&t.ID, &t.SourceID, &t.DestinationID, &t.Status, &t.Date, &t.CompletedAt,
		&t.CreatedBy, &t.CompletedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
