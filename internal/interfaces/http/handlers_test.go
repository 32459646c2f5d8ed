package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vanstock-api/internal/application/auth"
	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/application/report"
	"github.com/jhoicas/vanstock-api/internal/application/users"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/metrics"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/xlsx"
	apphttp "github.com/jhoicas/vanstock-api/internal/interfaces/http"
	"github.com/jhoicas/vanstock-api/internal/testsupport"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// apiEnv aplicación completa sobre el store en memoria, con un admin y un user logueados.
type apiEnv struct {
	app       *fiber.App
	env       *testsupport.Env
	admin     string
	user      string
	userEmail string
}

func newAPI(t *testing.T, opts ...testsupport.Option) *apiEnv {
	t.Helper()
	m := metrics.New()
	env := testsupport.NewEnv(t, append([]testsupport.Option{testsupport.WithMetrics(m)}, opts...)...)
	store := env.Store

	sessions := memory.NewSessionStore()
	authUC := auth.NewAuthUseCase(store.Users(), sessions, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	userUC := users.NewUserUseCase(store.Users(), sessions)
	reports := report.NewService(report.Repos{
		Sales:     store.Sales(),
		Returns:   store.Returns(),
		Transfers: store.Transfers(),
		Stock:     store.Stock(),
		Products:  store.Products(),
		Locations: store.Locations(),
		Customers: store.Customers(),
		Reports:   store.Reports(),
	}, pdf.NewMarotoReportRenderer(), xlsx.NewReportRenderer())

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		UserUC:    userUC,
		Catalog:   env.Catalog,
		Party:     env.Party,
		Sales:     env.Sales,
		Returns:   env.Returns,
		Transfers: env.Transfers,
		Ledger:    env.Ledger,
		Reports:   reports,
		Metrics:   m.Handler(),
	})

	a := &apiEnv{app: app, env: env, userEmail: "vendedor@example.com"}
	ctx := context.Background()
	_, err := authUC.BootstrapAdmin(ctx, dto.BootstrapRequest{Email: "admin@example.com", Password: "secreto123", Name: "Admin"})
	require.NoError(t, err)
	_, err = userUC.Create(ctx, testsupport.Admin, dto.CreateUserRequest{Email: a.userEmail, Password: "secreto123", Name: "Vendedor", Role: "user"})
	require.NoError(t, err)
	a.admin = a.login(t, "admin@example.com")
	a.user = a.login(t, a.userEmail)
	return a
}

func (a *apiEnv) login(t *testing.T, email string) string {
	t.Helper()
	resp, body := a.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.SessionResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

// call ejecuta la petición con cuerpo JSON opcional y devuelve respuesta y cuerpo leído.
func (a *apiEnv) call(t *testing.T, method, path, token string, in any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_BootstrapSoloUnaVez(t *testing.T) {
	a := newAPI(t)
	resp, body := a.call(t, http.MethodPost, "/api/auth/bootstrap", "", dto.BootstrapRequest{Email: "otro@example.com", Password: "secreto123", Name: "Otro"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ADMIN_EXISTS", errorCode(t, body))
}

func TestAuth_LoginInvalidoRetorna401(t *testing.T) {
	a := newAPI(t)
	resp, body := a.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@example.com", Password: "incorrecto"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	resp, body = a.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "no-es-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestAuth_SesionYLogout(t *testing.T) {
	a := newAPI(t)

	resp, body := a.call(t, http.MethodGet, "/api/auth/session", a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var sess dto.SessionResponse
	require.NoError(t, json.Unmarshal(body, &sess))
	assert.Equal(t, a.userEmail, sess.User.Email)
	assert.Equal(t, "user", sess.User.Role)

	resp, _ = a.call(t, http.MethodPost, "/api/auth/logout", a.user, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = a.call(t, http.MethodGet, "/api/auth/session", a.user, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "el token de una sesión cerrada no sirve")
}

func TestUsers_SoloAdmin(t *testing.T) {
	a := newAPI(t)

	resp, _ := a.call(t, http.MethodGet, "/api/users", a.user, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := a.call(t, http.MethodPost, "/api/users", a.admin, dto.CreateUserRequest{Email: "nuevo@example.com", Password: "secreto123", Name: "Nuevo", Role: "user"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = a.call(t, http.MethodPost, "/api/users", a.admin, dto.CreateUserRequest{Email: "nuevo@example.com", Password: "secreto123", Name: "Nuevo", Role: "user"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_CODE", errorCode(t, body))

	resp, body = a.call(t, http.MethodGet, "/api/users", a.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.UserResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 3)
}

func TestUsers_ActualizarYDesactivar(t *testing.T) {
	a := newAPI(t)

	resp, body := a.call(t, http.MethodGet, "/api/users", a.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.UserResponse
	require.NoError(t, json.Unmarshal(body, &list))
	var adminID, userID string
	for _, u := range list {
		switch u.Email {
		case "admin@example.com":
			adminID = u.ID
		case a.userEmail:
			userID = u.ID
		}
	}
	require.NotEmpty(t, adminID)
	require.NotEmpty(t, userID)

	name := "Vendedor Ruta Norte"
	resp, _ = a.call(t, http.MethodPut, "/api/users/"+userID, a.user, dto.UpdateUserRequest{Name: &name})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = a.call(t, http.MethodPut, "/api/users/"+userID, a.admin, dto.UpdateUserRequest{Name: &name})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated dto.UserResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, name, updated.Name)

	// cambiar el nombre no cierra la sesión
	resp, _ = a.call(t, http.MethodGet, "/api/auth/session", a.user, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	role := "user"
	resp, body = a.call(t, http.MethodPut, "/api/users/"+adminID, a.admin, dto.UpdateUserRequest{Role: &role})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, body = a.call(t, http.MethodDelete, "/api/users/nadie", a.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(t, body))

	resp, body = a.call(t, http.MethodDelete, "/api/users/"+userID, a.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "inactive", updated.Status)

	resp, _ = a.call(t, http.MethodGet, "/api/auth/session", a.user, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "la baja cierra las sesiones abiertas")

	resp, _ = a.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: a.userEmail, Password: "secreto123"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo y stock
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_UserNoCreaAdminSi(t *testing.T) {
	a := newAPI(t)
	in := dto.CreateProductRequest{Code: "P-1", Name: "Jabón", UnitMeasure: "pcs", UnitPrice: decimal.RequireFromString("2.50")}

	resp, _ := a.call(t, http.MethodPost, "/api/products", a.user, in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := a.call(t, http.MethodPost, "/api/products", a.admin, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))

	resp, body = a.call(t, http.MethodPost, "/api/products", a.admin, in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_CODE", errorCode(t, body))

	name := "Jabón grande"
	resp, body = a.call(t, http.MethodPut, "/api/products/"+p.ID, a.admin, dto.UpdateProductRequest{Name: &name})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "Jabón grande", p.Name)
	assert.Equal(t, "P-1", p.Code)

	resp, body = a.call(t, http.MethodGet, "/api/products/no-existe", a.user, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_PRODUCT", errorCode(t, body))
}

func TestLocations_CrearYConsultarStock(t *testing.T) {
	a := newAPI(t)
	resp, body := a.call(t, http.MethodPost, "/api/locations", a.admin, dto.CreateLocationRequest{Code: "VAN-1", Name: "Van norte", Kind: "van"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var van dto.LocationResponse
	require.NoError(t, json.Unmarshal(body, &van))

	resp, body = a.call(t, http.MethodPost, "/api/locations", a.admin, dto.CreateLocationRequest{Code: "X", Name: "X", Kind: "camion"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	p := a.env.Product(t, "P-1", "10")
	a.env.Stock(t, p.ID, van.ID, 12)

	resp, body = a.call(t, http.MethodGet, "/api/locations/"+van.ID+"/stock", a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []dto.StockResponse
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 1)
	assert.EqualValues(t, 12, rows[0].Quantity)

	resp, body = a.call(t, http.MethodGet, "/api/locations?kind=van", a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var locs []dto.LocationResponse
	require.NoError(t, json.Unmarshal(body, &locs))
	assert.Len(t, locs, 1)
}

func TestStock_ConsultaYAjuste(t *testing.T) {
	a := newAPI(t)
	p := a.env.Product(t, "P-1", "10")
	w := a.env.Warehouse(t, "BOD-1")

	adj := dto.AdjustStockRequest{ProductID: p.ID, LocationID: w.ID, Delta: 20, Reason: "conteo"}
	resp, _ := a.call(t, http.MethodPost, "/api/stock/adjustments", a.user, adj)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := a.call(t, http.MethodPost, "/api/stock/adjustments", a.admin, adj)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = a.call(t, http.MethodGet, fmt.Sprintf("/api/stock?product_id=%s&location_id=%s", p.ID, w.ID), a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st dto.StockResponse
	require.NoError(t, json.Unmarshal(body, &st))
	assert.EqualValues(t, 20, st.Quantity)

	adj.Delta = -50
	resp, body = a.call(t, http.MethodPost, "/api/stock/adjustments", a.admin, adj)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))

	resp, body = a.call(t, http.MethodGet, "/api/stock", a.user, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas, devoluciones y traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestSales_FlujoVentaYDevolucion(t *testing.T) {
	a := newAPI(t)
	p := a.env.Product(t, "P-1", "10")
	van := a.env.Van(t, "VAN-1")
	cu := a.env.Customer(t, "C-1")
	a.env.Stock(t, p.ID, van.ID, 10)

	resp, body := a.call(t, http.MethodPost, "/api/sales", a.user, dto.CreateSaleRequest{
		CustomerID: cu.ID,
		VanID:      van.ID,
		Items:      []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 3}},
		Payment:    dto.PaymentRequest{Status: "pending"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var sale dto.SaleResponse
	require.NoError(t, json.Unmarshal(body, &sale))
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(30)), "total %s", sale.Total)
	assert.Equal(t, int64(7), a.env.Quantity(t, p.ID, van.ID))

	resp, body = a.call(t, http.MethodGet, "/api/sales/"+sale.ID+"/returnable", a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []dto.ReturnableItem
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 1)
	assert.EqualValues(t, 3, items[0].Remaining)

	resp, body = a.call(t, http.MethodPost, "/api/returns", a.user, dto.CreateReturnRequest{
		SaleID: sale.ID, Items: []dto.ReturnItemRequest{{ProductID: p.ID, Quantity: 5}}, Reason: "dañado", RefundMode: "credit",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "OVER_RETURN", errorCode(t, body))

	resp, body = a.call(t, http.MethodPost, "/api/returns", a.user, dto.CreateReturnRequest{
		SaleID: sale.ID, Items: []dto.ReturnItemRequest{{ProductID: p.ID, Quantity: 1}}, Reason: "dañado", RefundMode: "credit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, int64(8), a.env.Quantity(t, p.ID, van.ID))

	resp, body = a.call(t, http.MethodGet, "/api/customers/"+cu.ID+"/balance-audit", a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var audit dto.BalanceAuditResponse
	require.NoError(t, json.Unmarshal(body, &audit))
	assert.True(t, audit.Consistent)
	assert.True(t, audit.Stored.Equal(decimal.NewFromInt(20)), "saldo %s", audit.Stored)

	resp, body = a.call(t, http.MethodGet, "/api/returns?sale_id="+sale.ID, a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rets []dto.ReturnResponse
	require.NoError(t, json.Unmarshal(body, &rets))
	assert.Len(t, rets, 1)
}

func TestSales_ErroresConCodigoEstable(t *testing.T) {
	a := newAPI(t)
	p := a.env.Product(t, "P-1", "10")
	van := a.env.Van(t, "VAN-1")
	cu := a.env.Customer(t, "C-1")
	a.env.Stock(t, p.ID, van.ID, 2)

	cases := []struct {
		name   string
		in     dto.CreateSaleRequest
		status int
		code   string
	}{
		{"cliente desconocido", dto.CreateSaleRequest{CustomerID: "nadie", VanID: van.ID, Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}}}, http.StatusNotFound, "UNKNOWN_CUSTOMER"},
		{"stock insuficiente", dto.CreateSaleRequest{CustomerID: cu.ID, VanID: van.ID, Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 3}}}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"cantidad cero", dto.CreateSaleRequest{CustomerID: cu.ID, VanID: van.ID, Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 0}}}, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"sin items", dto.CreateSaleRequest{CustomerID: cu.ID, VanID: van.ID}, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := a.call(t, http.MethodPost, "/api/sales", a.user, tc.in)
			assert.Equal(t, tc.status, resp.StatusCode, string(body))
			assert.Equal(t, tc.code, errorCode(t, body))
		})
	}
	assert.Equal(t, int64(2), a.env.Quantity(t, p.ID, van.ID), "ningún error deja cambios")
}

func TestSales_FiltroConFechaInvalida(t *testing.T) {
	a := newAPI(t)
	resp, body := a.call(t, http.MethodGet, "/api/sales?from=ayer", a.user, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, _ = a.call(t, http.MethodGet, "/api/sales?from=2026-01-01&to=2026-01-31", a.user, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTransfers_PendienteSeCompletaUnaVez(t *testing.T) {
	a := newAPI(t)
	p := a.env.Product(t, "P-1", "10")
	w := a.env.Warehouse(t, "BOD-1")
	van := a.env.Van(t, "VAN-1")
	a.env.Stock(t, p.ID, w.ID, 50)

	resp, body := a.call(t, http.MethodPost, "/api/transfers", a.user, dto.CreateTransferRequest{
		SourceID: w.ID, DestinationID: van.ID, Items: []dto.TransferItemRequest{{ProductID: p.ID, Quantity: 15}}, Status: "pending",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var tr dto.TransferResponse
	require.NoError(t, json.Unmarshal(body, &tr))
	assert.Equal(t, "pending", tr.Status)
	assert.Equal(t, int64(50), a.env.Quantity(t, p.ID, w.ID))

	resp, body = a.call(t, http.MethodPost, "/api/transfers/"+tr.ID+"/complete", a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, int64(35), a.env.Quantity(t, p.ID, w.ID))
	assert.Equal(t, int64(15), a.env.Quantity(t, p.ID, van.ID))

	resp, body = a.call(t, http.MethodPost, "/api/transfers/"+tr.ID+"/complete", a.user, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_COMPLETED", errorCode(t, body))

	resp, body = a.call(t, http.MethodPost, "/api/transfers", a.user, dto.CreateTransferRequest{
		SourceID: w.ID, DestinationID: w.ID, Items: []dto.TransferItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SAME_LOCATION", errorCode(t, body))

	resp, body = a.call(t, http.MethodGet, "/api/transfers?location_id="+van.ID, a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.TransferResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)
}

// contendedRunner simula un bloqueo que nunca se obtiene.
type contendedRunner struct{}

func (contendedRunner) Run(context.Context, func(context.Context, ports.TxRepos) error) error {
	return fmt.Errorf("lock stock: %w", domain.ErrContention)
}

func TestSales_ContencionRetorna503ConRetryAfter(t *testing.T) {
	a := newAPI(t, testsupport.WithRunner(func(*memory.Store) ports.TxRunner { return contendedRunner{} }))
	p := a.env.Product(t, "P-1", "10")
	van := a.env.Van(t, "VAN-1")
	cu := a.env.Customer(t, "C-1")

	resp, body := a.call(t, http.MethodPost, "/api/sales", a.user, dto.CreateSaleRequest{
		CustomerID: cu.ID, VanID: van.ID, Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	assert.Equal(t, "CONTENTION", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro, reportes y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_ReconcileYCantidad(t *testing.T) {
	a := newAPI(t)
	p := a.env.Product(t, "P-1", "10")
	w := a.env.Warehouse(t, "BOD-1")
	a.env.Stock(t, p.ID, w.ID, 9)

	resp, _ := a.call(t, http.MethodGet, "/api/ledger/reconcile", a.user, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := a.call(t, http.MethodGet, "/api/ledger/reconcile", a.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.True(t, rec.Consistent)
	assert.Equal(t, 1, rec.Checked)

	resp, body = a.call(t, http.MethodGet, fmt.Sprintf("/api/ledger/quantity?product_id=%s&location_id=%s", p.ID, w.ID), a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var q dto.QuantityResponse
	require.NoError(t, json.Unmarshal(body, &q))
	assert.EqualValues(t, 9, q.Reconstructed)
	assert.EqualValues(t, 9, q.Live)

	resp, body = a.call(t, http.MethodGet, "/api/ledger/entries?kind=adjustment", a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []dto.LedgerEntryResponse
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)
	assert.EqualValues(t, 9, entries[0].Deltas[0].Delta)
}

func TestReports_JSONExportYDashboard(t *testing.T) {
	a := newAPI(t)
	p := a.env.Product(t, "P-1", "10")
	w := a.env.Warehouse(t, "BOD-1")
	a.env.Stock(t, p.ID, w.ID, 3)

	resp, body := a.call(t, http.MethodGet, "/api/reports/stock", a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var rep dto.ReportResponse
	require.NoError(t, json.Unmarshal(body, &rep))
	assert.Equal(t, "stock", rep.Kind)
	assert.Len(t, rep.Rows, 1)

	resp, body = a.call(t, http.MethodGet, "/api/reports/ganancias", a.user, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, _ = a.call(t, http.MethodGet, "/api/reports/stock/export?format=xlsx", a.user, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = a.call(t, http.MethodGet, "/api/reports/stock/export?format=xlsx", a.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(body, []byte("PK")), "xlsx es un zip")

	resp, body = a.call(t, http.MethodGet, "/api/reports/stock/export", a.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = a.call(t, http.MethodGet, "/api/reports/dashboard?low_stock=5", a.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var dash dto.DashboardSummaryDTO
	require.NoError(t, json.Unmarshal(body, &dash))
	require.Len(t, dash.LowStock, 1)
	assert.Equal(t, "P-1", dash.LowStock[0].ProductCode)
}

func TestMetrics_ExponeTransacciones(t *testing.T) {
	a := newAPI(t)
	p := a.env.Product(t, "P-1", "10")
	w := a.env.Warehouse(t, "BOD-1")
	a.env.Stock(t, p.ID, w.ID, 3)

	resp, body := a.call(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `vanstock_transactions_total{kind="adjustment",outcome="committed"} 1`), string(body))
}
