package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AmountCount total monetario y número de documentos en un período.
type AmountCount struct {
	Amount decimal.Decimal
	Count  int
}

// LowStockRow fila de stock por debajo del umbral.
type LowStockRow struct {
	ProductID   string
	ProductCode string
	ProductName string
	LocationID  string
	Location    string
	Quantity    int64
}

// ReportRepository consultas de solo lectura para el dashboard.
type ReportRepository interface {
	SalesTotals(ctx context.Context, from, to time.Time) (AmountCount, error)
	ReturnsTotals(ctx context.Context, from, to time.Time) (AmountCount, error)
	TransferCount(ctx context.Context, from, to time.Time) (int, error)
	LowStock(ctx context.Context, threshold int64) ([]LowStockRow, error)
}
