package entity

import "time"

// Tipos de asiento del libro de movimientos.
const (
	LedgerKindSale       = "sale"
	LedgerKindReturn     = "return"
	LedgerKindTransfer   = "transfer"
	LedgerKindAdjustment = "adjustment"
)

// LedgerEntry asiento inmutable con los deltas de stock que causó una transacción.
// ReferenceID apunta a la venta, devolución o traslado; no la contiene.
type LedgerEntry struct {
	ID          string
	Kind        string
	ReferenceID string
	ActorID     string
	Timestamp   time.Time
	Note        string
	Deltas      []StockDelta
}

// StockDelta cambio con signo en una fila de stock.
type StockDelta struct {
	ProductID  string
	LocationID string
	Delta      int64
}

// Key clave de stock afectada.
func (d StockDelta) Key() StockKey {
	return StockKey{ProductID: d.ProductID, LocationID: d.LocationID}
}

// LedgerFilter filtros de listado del libro.
type LedgerFilter struct {
	Kind        string
	ReferenceID string
	ProductID   string
	LocationID  string
	From        time.Time
	To          time.Time
	Limit       int
	Offset      int
}

// Mismatch diferencia entre el stock vivo y el reconstruido desde el libro.
type Mismatch struct {
	ProductID     string
	LocationID    string
	Live          int64
	Reconstructed int64
}
