package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vanstock-api/internal/application/auth"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/vanstock-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/vanstock-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "vanstock-test"
	testExpMin    = 60
)

// testAuth AuthUseCase sobre sesiones en memoria; los tokens se emiten directo con pkg/jwt.
type testAuth struct {
	uc       *auth.AuthUseCase
	sessions *memory.SessionStore
}

func newTestAuth() *testAuth {
	sessions := memory.NewSessionStore()
	store := memory.NewStore(0)
	return &testAuth{
		uc:       auth.NewAuthUseCase(store.Users(), sessions, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		sessions: sessions,
	}
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para validar el token y la sesión
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(a *testAuth, allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	// Ruta protegida: token + RBAC
	app.Get("/protected",
		apphttp.AuthMiddleware(a.uc),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenForRole emite un token con el rol indicado y registra su sesión.
func tokenForRole(t *testing.T, a *testAuth, role string) (header, sessionID string) {
	t.Helper()
	sessionID = uuid.New().String()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, sessionID, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	require.NoError(t, a.sessions.Save(context.Background(), ports.Session{
		ID: sessionID, UserID: testUserID, Role: role, ExpiresAt: tok.ExpiresAt,
	}))
	return "Bearer " + tok.Value, sessionID
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	a := newTestAuth()
	app := buildTestApp(a, "admin")
	header, _ := tokenForRole(t, a, "admin")
	resp := doRequest(t, app, header)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"admin debe poder acceder a ruta restringida a admin")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "admin", body["role"])
}

func TestRequireRole_UserAccedeRutaAdminOUser(t *testing.T) {
	a := newTestAuth()
	app := buildTestApp(a, "admin", "user")
	header, _ := tokenForRole(t, a, "user")
	resp := doRequest(t, app, header)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_UserBloqueadoEnRutaAdmin(t *testing.T) {
	a := newTestAuth()
	app := buildTestApp(a, "admin")
	header, _ := tokenForRole(t, a, "user")
	resp := doRequest(t, app, header)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"user no debe poder acceder a ruta restringida a admin")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

// Token sin claim de rol → HTTP 401 MISSING_ROLE.
func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	a := newTestAuth()
	app := buildTestApp(a, "admin")
	header, _ := tokenForRole(t, a, "")

	resp := doRequest(t, app, header)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestRequireRole_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(newTestAuth(), "admin")
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestRequireRole_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(newTestAuth(), "admin")
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRole_FormatoSinBearer_Retorna401(t *testing.T) {
	a := newTestAuth()
	app := buildTestApp(a, "admin")
	header, _ := tokenForRole(t, a, "admin")
	resp := doRequest(t, app, "Token "+header[len("Bearer "):])
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: sesión y extracción del actor
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SesionCerradaRechazaTokenVigente(t *testing.T) {
	a := newTestAuth()
	app := buildTestApp(a, "admin")
	header, sessionID := tokenForRole(t, a, "admin")

	resp := doRequest(t, app, header)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, a.sessions.Delete(context.Background(), sessionID))
	resp = doRequest(t, app, header)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExtraeActor(t *testing.T) {
	a := newTestAuth()
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(a.uc), func(c *fiber.Ctx) error {
		actor := apphttp.GetActor(c)
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
			"actor":   actor.UserID + "/" + actor.Role,
		})
	})

	header, _ := tokenForRole(t, a, "admin")
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", header)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "admin", body["role"])
	assert.Equal(t, testUserID+"/admin", body["actor"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireAction
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireAction_UserNoGestionaProductos(t *testing.T) {
	a := newTestAuth()
	app := fiber.New()
	app.Post("/products", apphttp.AuthMiddleware(a.uc), apphttp.RequireAction(authz.ActionManageProducts),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	for role, want := range map[string]int{"admin": http.StatusCreated, "user": http.StatusForbidden} {
		header, _ := tokenForRole(t, a, role)
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, "rol %s", role)
	}
}
