package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una venta.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Métodos de pago aceptados.
var PaymentMethods = []string{"cash", "card", "upi", "credit", "bank"}

// PaymentInfo estado de pago declarado al momento de la venta.
type PaymentInfo struct {
	Status     string
	Method     string
	AmountPaid decimal.Decimal // sólo aplica en partial
}

// Sale venta realizada desde una van. Inmutable una vez creada.
type Sale struct {
	ID         string
	Number     string // INV-<yyyymmdd>-<hex>
	CustomerID string
	VanID      string
	Date       time.Time
	Lines      []SaleLine
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Payment    PaymentInfo
	CreatedBy  string
	CreatedAt  time.Time
}

// SaleLine línea de venta; UnitPrice queda congelado con el precio al momento de la venta.
type SaleLine struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Subtotal  decimal.Decimal
}

// Line devuelve la línea del producto o nil si no pertenece a la venta.
func (s *Sale) Line(productID string) *SaleLine {
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			return &s.Lines[i]
		}
	}
	return nil
}

// Outstanding porción no pagada de la venta; es lo que se suma al saldo del cliente.
func (s *Sale) Outstanding() decimal.Decimal {
	switch s.Payment.Status {
	case PaymentStatusPending:
		return s.Total
	case PaymentStatusPartial:
		return s.Total.Sub(s.Payment.AmountPaid)
	}
	return decimal.Zero
}

// SaleNumber número de factura legible a partir de la fecha y el id.
func SaleNumber(date time.Time, id string) string {
	hex := strings.ReplaceAll(id, "-", "")
	if len(hex) > 6 {
		hex = hex[:6]
	}
	return fmt.Sprintf("INV-%s-%s", date.Format("20060102"), strings.ToUpper(hex))
}

// SaleFilter filtros de listado de ventas. Campos vacíos no filtran.
type SaleFilter struct {
	CustomerID string
	VanID      string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}
