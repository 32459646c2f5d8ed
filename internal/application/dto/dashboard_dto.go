package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/reports/dashboard para un rango de fechas.
type DashboardSummaryDTO struct {
	SalesAmount   decimal.Decimal `json:"sales_amount"`
	SalesCount    int             `json:"sales_count"`
	ReturnsAmount decimal.Decimal `json:"returns_amount"`
	ReturnsCount  int             `json:"returns_count"`
	TransferCount int             `json:"transfer_count"`
	LowStock      []LowStockDTO   `json:"low_stock"`

	DateLabel string `json:"date_label"` // ej: "Octubre 2026"
}

// LowStockDTO producto con stock en o bajo el umbral en una ubicación.
type LowStockDTO struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	LocationID  string `json:"location_id"`
	Location    string `json:"location"`
	Quantity    int64  `json:"quantity"`
}
