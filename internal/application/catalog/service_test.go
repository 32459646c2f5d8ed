package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/testsupport"
)

func TestCreateProduct_CodigoUnico(t *testing.T) {
	env := testsupport.NewEnv(t)
	ctx := context.Background()
	in := dto.CreateProductRequest{Code: "AGUA-600", Name: "Agua 600ml", UnitMeasure: "pcs", UnitPrice: decimal.RequireFromString("1.20")}

	p, err := env.Catalog.CreateProduct(ctx, testsupport.Admin, in)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "AGUA-600", p.Code)

	_, err = env.Catalog.CreateProduct(ctx, testsupport.Admin, in)
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateProduct_Validaciones(t *testing.T) {
	env := testsupport.NewEnv(t)
	ctx := context.Background()

	_, err := env.Catalog.CreateProduct(ctx, testsupport.User, dto.CreateProductRequest{Code: "A", Name: "A", UnitMeasure: "pcs"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.Catalog.CreateProduct(ctx, testsupport.Admin, dto.CreateProductRequest{Code: " ", Name: "A", UnitMeasure: "pcs"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.Catalog.CreateProduct(ctx, testsupport.Admin, dto.CreateProductRequest{
		Code: "A", Name: "A", UnitMeasure: "pcs", UnitPrice: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.Catalog.CreateProduct(ctx, testsupport.Admin, dto.CreateProductRequest{
		Code: "A", Name: "A", UnitMeasure: "pcs", UnitPrice: decimal.RequireFromString("1.23456"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "más de 4 decimales")
}

func TestUpdateProduct_PrecioNoAfectaVentasPrevias(t *testing.T) {
	env := testsupport.NewEnv(t)
	ctx := context.Background()
	p := env.Product(t, "P", "10")
	v := env.Van(t, "V")
	c := env.Customer(t, "CUST-001")
	env.Stock(t, p.ID, v.ID, 5)
	sale, err := env.Sales.CreateSale(ctx, testsupport.User, dto.CreateSaleRequest{
		CustomerID: c.ID, VanID: v.ID,
		Items:   []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
		Payment: dto.PaymentRequest{Status: entity.PaymentStatusPaid},
	})
	require.NoError(t, err)

	price := decimal.NewFromInt(15)
	updated, err := env.Catalog.UpdateProduct(ctx, testsupport.Admin, p.ID, dto.UpdateProductRequest{UnitPrice: &price})
	require.NoError(t, err)
	assert.True(t, updated.UnitPrice.Equal(price))

	got, err := env.Sales.GetSale(ctx, testsupport.User, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Total.StringFixed(2))

	_, err = env.Catalog.UpdateProduct(ctx, testsupport.Admin, "nope", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

func TestCreateLocation_TipoValido(t *testing.T) {
	env := testsupport.NewEnv(t)
	ctx := context.Background()

	van, err := env.Catalog.CreateLocation(ctx, testsupport.Admin, dto.CreateLocationRequest{Code: "VAN-01", Name: "Van Norte", Kind: entity.LocationKindVan, Driver: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, entity.LocationKindVan, van.Kind)

	_, err = env.Catalog.CreateLocation(ctx, testsupport.Admin, dto.CreateLocationRequest{Code: "X", Name: "X", Kind: "truck"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.Catalog.CreateLocation(ctx, testsupport.Admin, dto.CreateLocationRequest{Code: "VAN-01", Name: "Otra", Kind: entity.LocationKindVan})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	vans, err := env.Catalog.ListLocations(ctx, testsupport.User, entity.LocationKindVan)
	require.NoError(t, err)
	assert.Len(t, vans, 1)
	warehouses, err := env.Catalog.ListLocations(ctx, testsupport.User, entity.LocationKindWarehouse)
	require.NoError(t, err)
	assert.Empty(t, warehouses)
}

func TestGetQuantity_CeroSinStock(t *testing.T) {
	env := testsupport.NewEnv(t)
	ctx := context.Background()
	p := env.Product(t, "P", "1")
	v := env.Van(t, "V")

	q, err := env.Catalog.GetQuantity(ctx, testsupport.User, p.ID, v.ID)
	require.NoError(t, err)
	assert.Zero(t, q.Quantity)

	_, err = env.Catalog.GetQuantity(ctx, testsupport.User, "nope", v.ID)
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
	_, err = env.Catalog.GetQuantity(ctx, testsupport.User, p.ID, "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownLocation)
}

func TestAdjustStock_SoloAdminYConAsiento(t *testing.T) {
	env := testsupport.NewEnv(t)
	ctx := context.Background()
	p := env.Product(t, "P", "1")
	v := env.Van(t, "V")
	req := dto.AdjustStockRequest{ProductID: p.ID, LocationID: v.ID, Delta: 12, Reason: "conteo físico"}

	_, err := env.Catalog.AdjustStock(ctx, testsupport.User, req)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, env.Quantity(t, p.ID, v.ID))

	res, err := env.Catalog.AdjustStock(ctx, testsupport.Admin, req)
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.Stock.Quantity)
	assert.NotEmpty(t, res.LedgerEntryID)

	_, err = env.Catalog.AdjustStock(ctx, testsupport.Admin, dto.AdjustStockRequest{ProductID: p.ID, LocationID: v.ID, Delta: -13, Reason: "merma"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = env.Catalog.AdjustStock(ctx, testsupport.Admin, dto.AdjustStockRequest{ProductID: p.ID, LocationID: v.ID, Delta: 0, Reason: "nada"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = env.Catalog.AdjustStock(ctx, testsupport.Admin, dto.AdjustStockRequest{ProductID: p.ID, LocationID: v.ID, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, int64(12), env.Quantity(t, p.ID, v.ID))
	env.RequireConsistent(t)
}

func TestListStockAt_YPorProducto(t *testing.T) {
	env := testsupport.NewEnv(t)
	ctx := context.Background()
	a := env.Product(t, "A", "1")
	b := env.Product(t, "B", "1")
	v := env.Van(t, "V")
	w := env.Warehouse(t, "W")
	env.Stock(t, a.ID, v.ID, 3)
	env.Stock(t, b.ID, v.ID, 4)
	env.Stock(t, a.ID, w.ID, 9)

	rows, err := env.Catalog.ListStockAt(ctx, testsupport.User, v.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = env.Catalog.StockByProduct(ctx, testsupport.User, a.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	var total int64
	for _, r := range rows {
		total += r.Quantity
	}
	assert.Equal(t, int64(12), total)
}
