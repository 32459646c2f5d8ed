// @title                       VanStock API
// @version                     1.0
// @description                 Inventario de bodegas y vans, ventas en ruta, devoluciones y traslados con libro de movimientos.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/vanstock-api/internal/application/auth"
	"github.com/jhoicas/vanstock-api/internal/application/catalog"
	"github.com/jhoicas/vanstock-api/internal/application/ledger"
	"github.com/jhoicas/vanstock-api/internal/application/party"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/application/report"
	"github.com/jhoicas/vanstock-api/internal/application/returns"
	"github.com/jhoicas/vanstock-api/internal/application/sales"
	"github.com/jhoicas/vanstock-api/internal/application/transfers"
	"github.com/jhoicas/vanstock-api/internal/application/users"
	"github.com/jhoicas/vanstock-api/internal/domain/pricing"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/vanstock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/vanstock-api/internal/infrastructure/redis"
	infraxlsx "github.com/jhoicas/vanstock-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/vanstock-api/internal/interfaces/http"
	"github.com/jhoicas/vanstock-api/pkg/config"
	"github.com/jhoicas/vanstock-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage repositorios y TxRunner del driver elegido (STORE_DRIVER).
type storage struct {
	runner    ports.TxRunner
	products  repository.ProductRepository
	locations repository.LocationRepository
	stock     repository.StockRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	returns   repository.ReturnRepository
	transfers repository.TransferRepository
	ledger    repository.LedgerRepository
	users     repository.UserRepository
	reports   repository.ReportRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.App.StoreDriver).Msg("abrir almacenamiento")
	}
	defer store.close()

	// Sesiones: Redis si REDIS_ADDR está configurado; si no, en memoria del proceso.
	var sessions ports.SessionStore
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		sessions = infraredis.NewSessionStore(client)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sesiones en memoria, se pierden al reiniciar")
		sessions = memory.NewSessionStore()
	}

	var (
		txMetrics      ports.TxMetrics = ports.NopMetrics{}
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		m := metrics.New()
		txMetrics = m
		metricsHandler = m.Handler()
	}

	policy := pricing.Policy{
		DiscountRate: cfg.Pricing.DiscountRate,
		TaxRate:      cfg.Pricing.TaxRate,
		Rounding:     cfg.Pricing.Rounding,
	}
	if err := policy.Validate(); err != nil {
		log.Fatal().Err(err).Msg("política de precios")
	}

	exec := ledger.NewExecutor(store.runner, cfg.Ledger, txMetrics, log)
	catalogSvc := catalog.NewService(store.products, store.locations, store.stock, exec, log)
	partySvc := party.NewService(store.customers, store.sales, store.returns)
	salesSvc := sales.NewService(exec, policy, store.customers, store.locations, store.products, store.sales, store.returns, log)
	returnsSvc := returns.NewService(exec, policy, store.returns, log)
	transfersSvc := transfers.NewService(exec, store.locations, store.products, store.stock, store.transfers, log)
	ledgerSvc := ledger.NewService(store.ledger, store.stock, store.products, store.locations)

	// Reportes: PDF (maroto) y Excel (excelize)
	reportSvc := report.NewService(report.Repos{
		Sales:     store.sales,
		Returns:   store.returns,
		Transfers: store.transfers,
		Stock:     store.stock,
		Products:  store.products,
		Locations: store.locations,
		Customers: store.customers,
		Reports:   store.reports,
	}, infrapdf.NewMarotoReportRenderer(), infraxlsx.NewReportRenderer())

	authUC := auth.NewAuthUseCase(store.users, sessions, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := users.NewUserUseCase(store.users, sessions)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (generar con swag init -g cmd/api/main.go)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "VanStock API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.App.StoreDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		UserUC:    userUC,
		Catalog:   catalogSvc,
		Party:     partySvc,
		Sales:     salesSvc,
		Returns:   returnsSvc,
		Transfers: transfersSvc,
		Ledger:    ledgerSvc,
		Reports:   reportSvc,
		Metrics:   metricsHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL o el store en memoria según STORE_DRIVER.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		mem := memory.NewStore(cfg.Ledger.LockTimeout)
		return &storage{
			runner:    mem,
			products:  mem.Products(),
			locations: mem.Locations(),
			stock:     mem.Stock(),
			customers: mem.Customers(),
			sales:     mem.Sales(),
			returns:   mem.Returns(),
			transfers: mem.Transfers(),
			ledger:    mem.Ledger(),
			users:     mem.Users(),
			reports:   mem.Reports(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		runner:    postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
		products:  postgres.NewProductRepository(pool),
		locations: postgres.NewLocationRepository(pool),
		stock:     postgres.NewStockRepository(pool),
		customers: postgres.NewCustomerRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		returns:   postgres.NewReturnRepository(pool),
		transfers: postgres.NewTransferRepository(pool),
		ledger:    postgres.NewLedgerRepository(pool),
		users:     postgres.NewUserRepository(pool),
		reports:   postgres.NewReportRepository(pool),
		close:     pool.Close,
	}, nil
}
