//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/vanstock-api/internal/application/auth"
	"github.com/jhoicas/vanstock-api/internal/application/catalog"
	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ledger"
	"github.com/jhoicas/vanstock-api/internal/application/party"
	"github.com/jhoicas/vanstock-api/internal/application/returns"
	"github.com/jhoicas/vanstock-api/internal/application/sales"
	"github.com/jhoicas/vanstock-api/internal/application/transfers"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/pricing"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/vanstock-api/pkg/config"
)

var (
	admin = entity.Actor{UserID: "admin-1", Role: entity.RoleAdmin}
	user  = entity.Actor{UserID: "user-1", Role: entity.RoleUser}
)

type pgEnv struct {
	pool      *pgxpool.Pool
	catalog   *catalog.Service
	party     *party.Service
	sales     *sales.Service
	returns   *returns.Service
	transfers *transfers.Service
	ledger    *ledger.Service
}

// newPgEnv levanta un PostgreSQL efímero, aplica las migraciones y cablea los servicios.
func newPgEnv(t *testing.T) *pgEnv {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("vanstock_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, dsn))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ledgerCfg := config.LedgerConfig{LockTimeout: 2 * time.Second, RetryAttempts: 5, RetryBase: 10 * time.Millisecond}
	runner := postgres.NewTxRunner(pool, ledgerCfg.LockTimeout)
	exec := ledger.NewExecutor(runner, ledgerCfg, nil, nil)
	policy := pricing.DefaultPolicy()

	products := postgres.NewProductRepository(pool)
	locations := postgres.NewLocationRepository(pool)
	stock := postgres.NewStockRepository(pool)
	customers := postgres.NewCustomerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	returnRepo := postgres.NewReturnRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)

	return &pgEnv{
		pool:      pool,
		catalog:   catalog.NewService(products, locations, stock, exec, nil),
		party:     party.NewService(customers, saleRepo, returnRepo),
		sales:     sales.NewService(exec, policy, customers, locations, products, saleRepo, returnRepo, nil),
		returns:   returns.NewService(exec, policy, returnRepo, nil),
		transfers: transfers.NewService(exec, locations, products, stock, transferRepo, nil),
		ledger:    ledger.NewService(postgres.NewLedgerRepository(pool), stock, products, locations),
	}
}

func (e *pgEnv) seed(t *testing.T) (productID, warehouseID, vanID, customerID string) {
	t.Helper()
	ctx := context.Background()
	p, err := e.catalog.CreateProduct(ctx, admin, dto.CreateProductRequest{
		Code: "LECHE-1L", Name: "Leche 1L", UnitMeasure: "liter", UnitPrice: decimal.RequireFromString("20"),
	})
	require.NoError(t, err)
	w, err := e.catalog.CreateLocation(ctx, admin, dto.CreateLocationRequest{Code: "BOD-1", Name: "Bodega", Kind: entity.LocationKindWarehouse})
	require.NoError(t, err)
	v, err := e.catalog.CreateLocation(ctx, admin, dto.CreateLocationRequest{Code: "VAN-1", Name: "Van 1", Kind: entity.LocationKindVan})
	require.NoError(t, err)
	c, err := e.party.Create(ctx, admin, dto.CreateCustomerRequest{Name: "Tienda La Esquina"})
	require.NoError(t, err)
	_, err = e.catalog.AdjustStock(ctx, admin, dto.AdjustStockRequest{ProductID: p.ID, LocationID: w.ID, Delta: 100, Reason: "carga inicial"})
	require.NoError(t, err)
	return p.ID, w.ID, v.ID, c.ID
}

func (e *pgEnv) quantity(t *testing.T, productID, locationID string) int64 {
	t.Helper()
	q, err := e.catalog.GetQuantity(context.Background(), admin, productID, locationID)
	require.NoError(t, err)
	return q.Quantity
}

func TestPostgres_FlujoCompletoConservaElLibro(t *testing.T) {
	env := newPgEnv(t)
	ctx := context.Background()
	p, w, v, c := env.seed(t)

	_, err := env.transfers.CreateTransfer(ctx, user, dto.CreateTransferRequest{
		SourceID: w, DestinationID: v, Items: []dto.TransferItemRequest{{ProductID: p, Quantity: 40}},
	})
	require.NoError(t, err)

	sale, err := env.sales.CreateSale(ctx, user, dto.CreateSaleRequest{
		CustomerID: c, VanID: v,
		Items:   []dto.SaleItemRequest{{ProductID: p, Quantity: 10}},
		Payment: dto.PaymentRequest{Status: entity.PaymentStatusPending},
	})
	require.NoError(t, err)
	assert.Equal(t, "200.00", sale.Total.StringFixed(2))

	ret, err := env.returns.CreateReturn(ctx, user, dto.CreateReturnRequest{
		SaleID: sale.ID, Items: []dto.ReturnItemRequest{{ProductID: p, Quantity: 3}},
		Reason: "vencido", RefundMode: entity.RefundModeCredit,
	})
	require.NoError(t, err)
	assert.Equal(t, "60.00", ret.RefundTotal.StringFixed(2))

	assert.Equal(t, int64(60), env.quantity(t, p, w))
	assert.Equal(t, int64(33), env.quantity(t, p, v))

	cust, err := env.party.Get(ctx, admin, c)
	require.NoError(t, err)
	assert.Equal(t, "140.00", cust.Balance.StringFixed(2))

	res, err := env.ledger.Reconcile(ctx, admin)
	require.NoError(t, err)
	assert.True(t, res.Consistent, "diferencias: %+v", res.Mismatches)

	got, err := env.sales.GetSale(ctx, user, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(10), got.Lines[0].Quantity)
}

func TestPostgres_StockInsuficienteNoEscribe(t *testing.T) {
	env := newPgEnv(t)
	ctx := context.Background()
	p, _, v, c := env.seed(t)

	_, err := env.sales.CreateSale(ctx, user, dto.CreateSaleRequest{
		CustomerID: c, VanID: v,
		Items:   []dto.SaleItemRequest{{ProductID: p, Quantity: 1}},
		Payment: dto.PaymentRequest{Status: entity.PaymentStatusPaid, Method: "cash"},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := env.sales.ListSales(ctx, admin, dto.SaleListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(0), env.quantity(t, p, v))
}

func TestPostgres_VentasConcurrentesNoSobrevenden(t *testing.T) {
	env := newPgEnv(t)
	ctx := context.Background()
	p, w, v, c := env.seed(t)
	_, err := env.transfers.CreateTransfer(ctx, admin, dto.CreateTransferRequest{
		SourceID: w, DestinationID: v, Items: []dto.TransferItemRequest{{ProductID: p, Quantity: 25}},
	})
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.sales.CreateSale(ctx, user, dto.CreateSaleRequest{
				CustomerID: c, VanID: v,
				Items:   []dto.SaleItemRequest{{ProductID: p, Quantity: 5}},
				Payment: dto.PaymentRequest{Status: entity.PaymentStatusPaid, Method: "cash"},
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, int64(0), env.quantity(t, p, v))
}

func TestPostgres_CodigoDuplicado(t *testing.T) {
	env := newPgEnv(t)
	ctx := context.Background()
	env.seed(t)

	_, err := env.catalog.CreateProduct(ctx, admin, dto.CreateProductRequest{
		Code: "LECHE-1L", Name: "Otra", UnitMeasure: "liter", UnitPrice: decimal.RequireFromString("1"),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestPostgres_CompletarTrasladoUnaVez(t *testing.T) {
	env := newPgEnv(t)
	ctx := context.Background()
	p, w, v, _ := env.seed(t)

	tr, err := env.transfers.CreateTransfer(ctx, admin, dto.CreateTransferRequest{
		SourceID: w, DestinationID: v, Status: entity.TransferStatusPending,
		Items: []dto.TransferItemRequest{{ProductID: p, Quantity: 30}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), env.quantity(t, p, w))

	_, err = env.transfers.CompleteTransfer(ctx, user, tr.ID)
	require.NoError(t, err)
	_, err = env.transfers.CompleteTransfer(ctx, user, tr.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	assert.Equal(t, int64(70), env.quantity(t, p, w))
	assert.Equal(t, int64(30), env.quantity(t, p, v))
}

func TestPostgres_BootstrapConcurrenteCreaUnSoloAdmin(t *testing.T) {
	env := newPgEnv(t)
	ctx := context.Background()
	users := postgres.NewUserRepository(env.pool)
	uc := auth.NewAuthUseCase(users, memory.NewSessionStore(), auth.JWTConfig{Secret: "secreto-integracion", ExpMinutes: 60, Issuer: "vanstock-test"})

	const workers = 8
	start := make(chan struct{})
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = uc.BootstrapAdmin(ctx, dto.BootstrapRequest{
				Email: fmt.Sprintf("admin%d@example.com", i), Password: "secreto123", Name: "Admin",
			})
		}(i)
	}
	close(start)
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAdminExists)
	}
	assert.Equal(t, 1, created)

	var admins int
	require.NoError(t, env.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = 'admin'`).Scan(&admins))
	assert.Equal(t, 1, admins)
}

func TestPostgres_ActualizarUsuario(t *testing.T) {
	env := newPgEnv(t)
	ctx := context.Background()
	repo := postgres.NewUserRepository(env.pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	u := &entity.User{ID: "u-1", Email: "vendedor@example.com", PasswordHash: "x", Name: "Vendedor",
		Role: entity.RoleUser, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, u))

	u.Status = entity.UserStatusInactive
	u.Name = "Vendedor Norte"
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusInactive, got.Status)
	assert.Equal(t, "Vendedor Norte", got.Name)

	assert.ErrorIs(t, repo.Update(ctx, &entity.User{ID: "nadie"}), domain.ErrUserNotFound)
}
