package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente con saldo pendiente acumulado (ventas no pagadas menos créditos).
type Customer struct {
	ID        string
	Code      string // p. ej. CUST-001, único
	Name      string
	Phone     string
	Email     string
	Address   string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
