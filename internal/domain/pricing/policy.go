package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/vanstock-api/internal/domain"
)

// Modos de redondeo soportados.
const (
	RoundHalfUp   = "half_up"
	RoundHalfEven = "half_even"
	RoundDown     = "down"
)

// Decimales del total.
const scale = 2

// PriceScale decimales máximos de un precio unitario; coincide con NUMERIC(14, 4) en la base.
const PriceScale = 4

// ValidatePrice rechaza precios negativos o con más de PriceScale decimales.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: unit_price no puede ser negativo", domain.ErrValidation)
	}
	if !price.Equal(price.Truncate(PriceScale)) {
		return fmt.Errorf("%w: unit_price admite hasta %d decimales", domain.ErrValidation, PriceScale)
	}
	return nil
}

// Policy política de precios: tasas como fracción (0.10 = 10%) y modo de redondeo del total.
type Policy struct {
	DiscountRate decimal.Decimal
	TaxRate      decimal.Decimal
	Rounding     string
}

// DefaultPolicy sin descuento ni impuesto, redondeo half_up.
func DefaultPolicy() Policy {
	return Policy{DiscountRate: decimal.Zero, TaxRate: decimal.Zero, Rounding: RoundHalfUp}
}

// Validate tasas en [0, 1] y modo de redondeo conocido.
func (p Policy) Validate() error {
	one := decimal.NewFromInt(1)
	if p.DiscountRate.IsNegative() || p.DiscountRate.GreaterThan(one) {
		return fmt.Errorf("%w: discount rate fuera de rango", domain.ErrValidation)
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(one) {
		return fmt.Errorf("%w: tax rate fuera de rango", domain.ErrValidation)
	}
	switch p.Rounding {
	case RoundHalfUp, RoundHalfEven, RoundDown:
		return nil
	}
	return fmt.Errorf("%w: modo de redondeo %q", domain.ErrValidation, p.Rounding)
}

// Line entrada del cálculo: cantidad y precio unitario.
type Line struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

// LineAmounts importes por línea, sin redondear.
type LineAmounts struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
}

// Totals resultado del cálculo. Sólo Total está redondeado.
type Totals struct {
	Lines    []LineAmounts
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Compute calcula subtotal, descuento, impuesto y total de una venta.
//
//	subtotal = Σ qty*price
//	discount = subtotal * discountRate
//	tax      = (subtotal - discount) * taxRate
//	total    = round(subtotal - discount + tax)
func (p Policy) Compute(lines []Line) Totals {
	t := Totals{Lines: make([]LineAmounts, len(lines))}
	for i, l := range lines {
		sub := l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
		t.Lines[i] = LineAmounts{Subtotal: sub, Discount: sub.Mul(p.DiscountRate)}
		t.Subtotal = t.Subtotal.Add(sub)
	}
	t.Discount = t.Subtotal.Mul(p.DiscountRate)
	t.Tax = t.Subtotal.Sub(t.Discount).Mul(p.TaxRate)
	t.Total = p.Round(t.Subtotal.Sub(t.Discount).Add(t.Tax))
	return t
}

// Refund total a reembolsar: Σ qty*price original, redondeado con la política.
func (p Policy) Refund(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return p.Round(total)
}

// Round redondea a 2 decimales según el modo de la política.
func (p Policy) Round(d decimal.Decimal) decimal.Decimal {
	switch p.Rounding {
	case RoundHalfEven:
		return d.RoundBank(scale)
	case RoundDown:
		return d.Truncate(scale)
	}
	return d.Round(scale)
}
