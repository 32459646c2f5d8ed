package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta. UnitPrice nil toma el precio de catálogo.
type SaleItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// PaymentRequest estado de pago declarado.
type PaymentRequest struct {
	Status     string          `json:"status" validate:"omitempty,oneof=pending partial paid"`
	Method     string          `json:"method" validate:"omitempty,oneof=cash card upi credit bank"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

// CreateSaleRequest entrada para registrar una venta desde una van.
type CreateSaleRequest struct {
	CustomerID string            `json:"customer_id" validate:"required"`
	VanID      string            `json:"van_id" validate:"required"`
	Items      []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Payment    PaymentRequest    `json:"payment"`
}

// SaleLineResponse línea de venta.
type SaleLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID         string             `json:"id"`
	Number     string             `json:"number"`
	CustomerID string             `json:"customer_id"`
	VanID      string             `json:"van_id"`
	Date       time.Time          `json:"date"`
	Lines      []SaleLineResponse `json:"lines"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Discount   decimal.Decimal    `json:"discount"`
	Tax        decimal.Decimal    `json:"tax"`
	Total      decimal.Decimal    `json:"total"`
	Payment    PaymentRequest     `json:"payment"`
	CreatedBy  string             `json:"created_by"`
}

// SaleListRequest filtros de GET /api/sales.
type SaleListRequest struct {
	PageRequest
	CustomerID string    `query:"customer_id"`
	VanID      string    `query:"van_id"`
	From       time.Time `query:"from"`
	To         time.Time `query:"to"`
}

// ReturnableItem cantidad aún devolvible de un producto de la venta.
type ReturnableItem struct {
	ProductID string          `json:"product_id"`
	Sold      int64           `json:"sold"`
	Returned  int64           `json:"returned"`
	Remaining int64           `json:"remaining"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
