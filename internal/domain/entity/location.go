package entity

import "time"

// Tipos de ubicación donde se lleva stock.
const (
	LocationKindWarehouse = "warehouse"
	LocationKindVan       = "van"
)

// Location bodega central o van de reparto.
type Location struct {
	ID        string
	Code      string // número de van o código de bodega, único
	Name      string
	Kind      string
	Capacity  int
	Driver    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsVan indica si la ubicación es una van.
func (l *Location) IsVan() bool { return l.Kind == LocationKindVan }

// ValidLocationKind valida el tipo de ubicación.
func ValidLocationKind(kind string) bool {
	return kind == LocationKindWarehouse || kind == LocationKindVan
}
