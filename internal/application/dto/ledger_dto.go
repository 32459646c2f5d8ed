package dto

import "time"

// LedgerDeltaResponse delta de stock de un asiento.
type LedgerDeltaResponse struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Delta      int64  `json:"delta"`
}

// LedgerEntryResponse asiento del libro.
type LedgerEntryResponse struct {
	ID          string                `json:"id"`
	Kind        string                `json:"kind"`
	ReferenceID string                `json:"reference_id"`
	ActorID     string                `json:"actor_id"`
	Timestamp   time.Time             `json:"timestamp"`
	Note        string                `json:"note,omitempty"`
	Deltas      []LedgerDeltaResponse `json:"deltas"`
}

// LedgerListRequest filtros de GET /api/ledger/entries.
type LedgerListRequest struct {
	PageRequest
	Kind        string    `query:"kind"`
	ReferenceID string    `query:"reference_id"`
	ProductID   string    `query:"product_id"`
	LocationID  string    `query:"location_id"`
	From        time.Time `query:"from"`
	To          time.Time `query:"to"`
}

// QuantityResponse cantidad reconstruida desde el libro vs. la viva.
type QuantityResponse struct {
	ProductID     string    `json:"product_id"`
	LocationID    string    `json:"location_id"`
	AsOf          time.Time `json:"as_of"`
	Reconstructed int64     `json:"reconstructed"`
	Live          int64     `json:"live"`
}

// MismatchResponse diferencia detectada en la conciliación.
type MismatchResponse struct {
	ProductID     string `json:"product_id"`
	LocationID    string `json:"location_id"`
	Live          int64  `json:"live"`
	Reconstructed int64  `json:"reconstructed"`
}

// ReconcileResponse resultado de conciliar stock vivo contra el libro.
type ReconcileResponse struct {
	Consistent bool               `json:"consistent"`
	Checked    int                `json:"checked"`
	Mismatches []MismatchResponse `json:"mismatches"`
}
