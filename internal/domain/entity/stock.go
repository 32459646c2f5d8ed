package entity

import "time"

// Stock cantidad disponible de un producto en una ubicación (fila viva del catálogo).
// Version se incrementa en cada escritura.
type Stock struct {
	ProductID  string
	LocationID string
	Quantity   int64
	Version    int64
	UpdatedAt  time.Time
}

// StockKey identifica una fila de stock.
type StockKey struct {
	ProductID  string
	LocationID string
}

// Key devuelve la clave (producto, ubicación) de la fila.
func (s Stock) Key() StockKey {
	return StockKey{ProductID: s.ProductID, LocationID: s.LocationID}
}

// Less orden total de claves; los bloqueos se toman siempre en este orden.
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.LocationID < o.LocationID
}
