// Package testsupport arma los servicios sobre el store en memoria con datos de prueba.
package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vanstock-api/internal/application/catalog"
	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ledger"
	"github.com/jhoicas/vanstock-api/internal/application/party"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/application/returns"
	"github.com/jhoicas/vanstock-api/internal/application/sales"
	"github.com/jhoicas/vanstock-api/internal/application/transfers"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/pricing"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/vanstock-api/pkg/config"
)

// Actores de prueba.
var (
	Admin = entity.Actor{UserID: "admin-1", Role: entity.RoleAdmin}
	User  = entity.Actor{UserID: "user-1", Role: entity.RoleUser}
)

// Env servicios cableados sobre un memory.Store.
type Env struct {
	Store     *memory.Store
	Exec      *ledger.Executor
	Catalog   *catalog.Service
	Party     *party.Service
	Sales     *sales.Service
	Returns   *returns.Service
	Transfers *transfers.Service
	Ledger    *ledger.Service
}

type options struct {
	policy  pricing.Policy
	ledger  config.LedgerConfig
	metrics ports.TxMetrics
	runner  func(*memory.Store) ports.TxRunner
}

// Option ajusta el entorno.
type Option func(*options)

// WithPolicy usa otra política de precios.
func WithPolicy(p pricing.Policy) Option { return func(o *options) { o.policy = p } }

// WithLedgerConfig cambia timeout de bloqueo y reintentos.
func WithLedgerConfig(c config.LedgerConfig) Option { return func(o *options) { o.ledger = c } }

// WithMetrics registra métricas en m.
func WithMetrics(m ports.TxMetrics) Option { return func(o *options) { o.metrics = m } }

// WithRunner envuelve el TxRunner del store (p. ej. para inyectar contención).
func WithRunner(wrap func(*memory.Store) ports.TxRunner) Option {
	return func(o *options) { o.runner = wrap }
}

// NewEnv crea un entorno vacío.
func NewEnv(t testing.TB, opts ...Option) *Env {
	t.Helper()
	o := options{
		policy: pricing.DefaultPolicy(),
		ledger: config.LedgerConfig{LockTimeout: 500 * time.Millisecond, RetryAttempts: 3, RetryBase: time.Millisecond},
	}
	for _, opt := range opts {
		opt(&o)
	}
	store := memory.NewStore(o.ledger.LockTimeout)
	var runner ports.TxRunner = store
	if o.runner != nil {
		runner = o.runner(store)
	}
	exec := ledger.NewExecutor(runner, o.ledger, o.metrics, nil)
	return &Env{
		Store:     store,
		Exec:      exec,
		Catalog:   catalog.NewService(store.Products(), store.Locations(), store.Stock(), exec, nil),
		Party:     party.NewService(store.Customers(), store.Sales(), store.Returns()),
		Sales:     sales.NewService(exec, o.policy, store.Customers(), store.Locations(), store.Products(), store.Sales(), store.Returns(), nil),
		Returns:   returns.NewService(exec, o.policy, store.Returns(), nil),
		Transfers: transfers.NewService(exec, store.Locations(), store.Products(), store.Stock(), store.Transfers(), nil),
		Ledger:    ledger.NewService(store.Ledger(), store.Stock(), store.Products(), store.Locations()),
	}
}

// Product crea un producto con el precio dado.
func (e *Env) Product(t testing.TB, code, price string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:          uuid.New().String(),
		Code:        code,
		Name:        "Producto " + code,
		Category:    "general",
		UnitMeasure: "pcs",
		UnitPrice:   decimal.RequireFromString(price),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, e.Store.Products().Create(context.Background(), p))
	return p
}

// Van crea una van.
func (e *Env) Van(t testing.TB, code string) *entity.Location {
	t.Helper()
	return e.location(t, code, entity.LocationKindVan)
}

// Warehouse crea una bodega.
func (e *Env) Warehouse(t testing.TB, code string) *entity.Location {
	t.Helper()
	return e.location(t, code, entity.LocationKindWarehouse)
}

func (e *Env) location(t testing.TB, code, kind string) *entity.Location {
	l := &entity.Location{ID: uuid.New().String(), Code: code, Name: code, Kind: kind, CreatedAt: time.Now()}
	require.NoError(t, e.Store.Locations().Create(context.Background(), l))
	return l
}

// Customer crea un cliente con saldo cero.
func (e *Env) Customer(t testing.TB, code string) *entity.Customer {
	t.Helper()
	c := &entity.Customer{ID: uuid.New().String(), Code: code, Name: "Cliente " + code, Balance: decimal.Zero, CreatedAt: time.Now()}
	require.NoError(t, e.Store.Customers().Create(context.Background(), c))
	return c
}

// Stock carga cantidad inicial con un ajuste de admin, así el libro queda consistente.
func (e *Env) Stock(t testing.TB, productID, locationID string, qty int64) {
	t.Helper()
	_, err := e.Catalog.AdjustStock(context.Background(), Admin, dto.AdjustStockRequest{
		ProductID: productID, LocationID: locationID, Delta: qty, Reason: "carga inicial",
	})
	require.NoError(t, err)
}

// Quantity cantidad viva.
func (e *Env) Quantity(t testing.TB, productID, locationID string) int64 {
	t.Helper()
	st, err := e.Store.Stock().Get(context.Background(), productID, locationID)
	require.NoError(t, err)
	return st.Quantity
}

// RequireConsistent verifica que el libro reconstruya todo el stock vivo.
func (e *Env) RequireConsistent(t testing.TB) {
	t.Helper()
	res, err := e.Ledger.Reconcile(context.Background(), Admin)
	require.NoError(t, err)
	require.True(t, res.Consistent, "diferencias: %+v", res.Mismatches)
}
