package entity

import "time"

// Estados de un traslado.
const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
)

// Transfer traslado de stock entre dos ubicaciones distintas.
type Transfer struct {
	ID            string
	SourceID      string
	DestinationID string
	Lines         []TransferLine
	Status        string
	Date          time.Time
	CompletedAt   *time.Time
	CreatedBy     string
	CompletedBy   string
	CreatedAt     time.Time
}

// TransferLine producto y cantidad a trasladar.
type TransferLine struct {
	ProductID string
	Quantity  int64
}

// IsCompleted indica si el traslado ya movió el stock.
func (t *Transfer) IsCompleted() bool { return t.Status == TransferStatusCompleted }

// TransferFilter filtros de listado de traslados.
type TransferFilter struct {
	LocationID string // origen o destino
	Status     string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}
