package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida sugeridas; se aceptan otras definidas por el usuario.
var DefaultUnits = []string{"kg", "liter", "pcs", "pack", "box"}

// Product representa un producto del catálogo. El stock se maneja por ubicación en Stock.
type Product struct {
	ID          string
	Code        string // código de ítem, único
	Barcode     string
	Name        string
	Category    string
	UnitMeasure string
	UnitPrice   decimal.Decimal // precio de venta vigente
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
