package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/vanstock-api/internal/application/auth"
	"github.com/jhoicas/vanstock-api/internal/application/catalog"
	"github.com/jhoicas/vanstock-api/internal/application/ledger"
	"github.com/jhoicas/vanstock-api/internal/application/party"
	"github.com/jhoicas/vanstock-api/internal/application/report"
	"github.com/jhoicas/vanstock-api/internal/application/returns"
	"github.com/jhoicas/vanstock-api/internal/application/sales"
	"github.com/jhoicas/vanstock-api/internal/application/transfers"
	"github.com/jhoicas/vanstock-api/internal/application/users"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	UserUC    *users.UserUseCase
	Catalog   *catalog.Service
	Party     *party.Service
	Sales     *sales.Service
	Returns   *returns.Service
	Transfers *transfers.Service
	Ledger    *ledger.Service
	Reports   *report.Service
	// Metrics handler de exposición Prometheus; nil = /metrics deshabilitado.
	Metrics http.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/bootstrap", authHandler.Bootstrap)

	// Rutas protegidas (requieren Bearer Token con sesión abierta)
	protected := api.Group("/", AuthMiddleware(deps.AuthUC))
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/session", authHandler.Session)

	// Users (admin)
	userHandler := NewUserHandler(deps.UserUC)
	usersGroup := protected.Group("/users", adminOnly)
	usersGroup.Get("/", userHandler.List)
	usersGroup.Post("/", userHandler.Create)
	usersGroup.Put("/:id", userHandler.Update)
	usersGroup.Delete("/:id", userHandler.Deactivate)

	// Locations
	locationHandler := NewLocationHandler(deps.Catalog)
	locations := protected.Group("/locations")
	locations.Get("/", locationHandler.List)
	locations.Post("/", RequireAction(authz.ActionManageLocations), locationHandler.Create)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Get("/:id/stock", locationHandler.Stock)

	// Products
	productHandler := NewProductHandler(deps.Catalog)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", RequireAction(authz.ActionManageProducts), productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", RequireAction(authz.ActionManageProducts), productHandler.Update)
	products.Get("/:id/stock", productHandler.Stock)

	// Stock
	inventoryHandler := NewInventoryHandler(deps.Catalog)
	protected.Get("/stock", inventoryHandler.Stock)
	protected.Post("/stock/adjustments", adminOnly, inventoryHandler.Adjust)

	// Customers
	customerHandler := NewCustomerHandler(deps.Party)
	customers := protected.Group("/customers")
	customers.Get("/", customerHandler.List)
	customers.Post("/", customerHandler.Create)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Get("/:id/balance-audit", customerHandler.BalanceAudit)

	// Sales
	saleHandler := NewSaleHandler(deps.Sales)
	salesGroup := protected.Group("/sales")
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/returnable", saleHandler.Returnable)

	// Returns
	returnHandler := NewReturnHandler(deps.Returns)
	returnsGroup := protected.Group("/returns")
	returnsGroup.Get("/", returnHandler.List)
	returnsGroup.Post("/", returnHandler.Create)
	returnsGroup.Get("/:id", returnHandler.GetByID)

	// Transfers
	transferHandler := NewTransferHandler(deps.Transfers)
	transfersGroup := protected.Group("/transfers")
	transfersGroup.Get("/", transferHandler.List)
	transfersGroup.Post("/", transferHandler.Create)
	transfersGroup.Get("/:id", transferHandler.GetByID)
	transfersGroup.Post("/:id/complete", transferHandler.Complete)

	// Ledger
	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledgerGroup := protected.Group("/ledger")
	ledgerGroup.Get("/entries", ledgerHandler.Entries)
	ledgerGroup.Get("/quantity", ledgerHandler.Quantity)
	ledgerGroup.Get("/reconcile", adminOnly, ledgerHandler.Reconcile)

	// Reports (dashboard antes de :kind)
	reportHandler := NewReportHandler(deps.Reports)
	dashboardHandler := NewDashboardHandler(deps.Reports)
	reports := protected.Group("/reports")
	reports.Get("/dashboard", dashboardHandler.GetSummary)
	reports.Get("/:kind", reportHandler.Get)
	reports.Get("/:kind/export", adminOnly, reportHandler.Export)
}
