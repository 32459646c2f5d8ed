package dto

import "time"

// TransferItemRequest producto y cantidad a trasladar.
type TransferItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity"`
}

// CreateTransferRequest entrada para crear un traslado. Status vacío = completed.
type CreateTransferRequest struct {
	SourceID      string                `json:"source_id" validate:"required"`
	DestinationID string                `json:"destination_id" validate:"required"`
	Items         []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
	Status        string                `json:"status" validate:"omitempty,oneof=pending completed"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID            string                `json:"id"`
	SourceID      string                `json:"source_id"`
	DestinationID string                `json:"destination_id"`
	Items         []TransferItemRequest `json:"items"`
	Status        string                `json:"status"`
	Date          time.Time             `json:"date"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
	CreatedBy     string                `json:"created_by"`
}

// TransferListRequest filtros de GET /api/transfers.
type TransferListRequest struct {
	PageRequest
	LocationID string    `query:"location_id"`
	Status     string    `query:"status"`
	From       time.Time `query:"from"`
	To         time.Time `query:"to"`
}
