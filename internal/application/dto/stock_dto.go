package dto

import "time"

// AdjustStockRequest ajuste manual de stock (sólo admin). Delta con signo.
type AdjustStockRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Delta      int64  `json:"delta" validate:"required"`
	Reason     string `json:"reason" validate:"required,max=500"`
}

// StockResponse cantidad de un producto en una ubicación.
type StockResponse struct {
	ProductID    string    `json:"product_id"`
	ProductCode  string    `json:"product_code,omitempty"`
	ProductName  string    `json:"product_name,omitempty"`
	LocationID   string    `json:"location_id"`
	LocationCode string    `json:"location_code,omitempty"`
	Quantity     int64     `json:"quantity"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// AdjustStockResponse resultado del ajuste con el asiento generado.
type AdjustStockResponse struct {
	Stock         StockResponse `json:"stock"`
	LedgerEntryID string        `json:"ledger_entry_id"`
}
