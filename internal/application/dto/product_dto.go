package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code        string          `json:"code" validate:"required,min=1,max=64"`
	Barcode     string          `json:"barcode" validate:"omitempty,max=64"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Category    string          `json:"category" validate:"omitempty,max=100"`
	UnitMeasure string          `json:"unit_measure" validate:"required,max=20"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// UpdateProductRequest entrada para actualizar un producto. El código no cambia.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Barcode     *string          `json:"barcode" validate:"omitempty,max=64"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	UnitMeasure *string          `json:"unit_measure" validate:"omitempty,min=1,max=20"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Barcode     string          `json:"barcode,omitempty"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	UnitMeasure string          `json:"unit_measure"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
