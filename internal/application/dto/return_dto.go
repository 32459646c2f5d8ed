package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnItemRequest producto y cantidad a devolver.
type ReturnItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity"`
}

// CreateReturnRequest entrada para registrar una devolución contra una venta.
type CreateReturnRequest struct {
	SaleID     string              `json:"sale_id" validate:"required"`
	Items      []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason     string              `json:"reason" validate:"required,max=500"`
	RefundMode string              `json:"refund_mode" validate:"required,oneof=cash credit bank upi"`
}

// ReturnLineResponse línea devuelta.
type ReturnLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReturnResponse salida de una devolución.
type ReturnResponse struct {
	ID          string               `json:"id"`
	SaleID      string               `json:"sale_id"`
	CustomerID  string               `json:"customer_id"`
	VanID       string               `json:"van_id"`
	Date        time.Time            `json:"date"`
	Lines       []ReturnLineResponse `json:"lines"`
	Reason      string               `json:"reason"`
	RefundMode  string               `json:"refund_mode"`
	RefundTotal decimal.Decimal      `json:"refund_total"`
	CreatedBy   string               `json:"created_by"`
}

// ReturnListRequest filtros de GET /api/returns.
type ReturnListRequest struct {
	PageRequest
	SaleID     string    `query:"sale_id"`
	CustomerID string    `query:"customer_id"`
	From       time.Time `query:"from"`
	To         time.Time `query:"to"`
}
