package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de reembolso de una devolución.
const (
	RefundModeCash   = "cash"
	RefundModeCredit = "credit"
	RefundModeBank   = "bank"
	RefundModeUPI    = "upi"
)

// ValidRefundMode valida el modo de reembolso.
func ValidRefundMode(mode string) bool {
	switch mode {
	case RefundModeCash, RefundModeCredit, RefundModeBank, RefundModeUPI:
		return true
	}
	return false
}

// SaleReturn devolución contra una venta. El stock vuelve a la van de la venta.
type SaleReturn struct {
	ID          string
	SaleID      string
	CustomerID  string
	VanID       string
	Date        time.Time
	Lines       []ReturnLine
	Reason      string
	RefundMode  string
	RefundTotal decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
}

// ReturnLine línea devuelta; UnitPrice es el de la línea original de la venta.
type ReturnLine struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// ReturnFilter filtros de listado de devoluciones.
type ReturnFilter struct {
	SaleID     string
	CustomerID string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}
