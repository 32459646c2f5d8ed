package memory

import "github.com/jhoicas/vanstock-api/internal/domain/entity"

// Las entidades se copian al entrar y salir del arena; ningún caller comparte punteros con él.

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func cloneLocation(l *entity.Location) *entity.Location {
	c := *l
	return &c
}

func cloneStock(s *entity.Stock) *entity.Stock {
	c := *s
	return &c
}

func cloneCustomer(cu *entity.Customer) *entity.Customer {
	c := *cu
	return &c
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Lines = append([]entity.SaleLine(nil), s.Lines...)
	return &c
}

func cloneReturn(r *entity.SaleReturn) *entity.SaleReturn {
	c := *r
	c.Lines = append([]entity.ReturnLine(nil), r.Lines...)
	return &c
}

func cloneTransfer(t *entity.Transfer) *entity.Transfer {
	c := *t
	c.Lines = append([]entity.TransferLine(nil), t.Lines...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

func cloneEntry(e *entity.LedgerEntry) *entity.LedgerEntry {
	c := *e
	c.Deltas = append([]entity.StockDelta(nil), e.Deltas...)
	return &c
}
