package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/albaranes-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/albaranes-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testInviterID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "albaranes-test"
	testExpMin    = 60
)

// buildTestApp app mínima con una ruta de sesión y otra de recuperación que
// devuelven el principal cargado por el middleware.
func buildTestApp() *fiber.App {
	app := fiber.New()
	echo := func(c *fiber.Ctx) error {
		p := apphttp.GetPrincipal(c)
		return c.JSON(fiber.Map{"id": p.ID, "role": p.Role, "invited_by": p.InvitedBy})
	}
	app.Get("/protected", apphttp.AuthMiddleware(testJWTSecret), echo)
	app.Get("/recover", apphttp.RecoveryMiddleware(testJWTSecret), echo)
	return app
}

func sessionToken(t *testing.T, id pkgjwt.Identity) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, id, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func recoveryToken(t *testing.T, id pkgjwt.Identity) string {
	t.Helper()
	tok, err := pkgjwt.GenerateRecovery(testJWTSecret, testIssuer, id, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CargaPrincipal(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "/protected", sessionToken(t, pkgjwt.Identity{
		UserID: testUserID, Role: "guest", InvitedBy: testInviterID,
	}))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["id"])
	assert.Equal(t, "guest", body["role"])
	assert.Equal(t, testInviterID, body["invited_by"])
}

func TestAuthMiddleware_SinHeader(t *testing.T) {
	resp := doRequest(t, buildTestApp(), "/protected", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	for _, h := range []string{"Token abc", "Bearer", "Bearer    ", "Bearer not-a-jwt"} {
		resp := doRequest(t, buildTestApp(), "/protected", h)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, h)
		resp.Body.Close()
	}
}

func TestAuthMiddleware_FirmaDeOtroSecreto(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secreto", testIssuer, pkgjwt.Identity{UserID: testUserID, Role: "user"}, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, buildTestApp(), "/protected", "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_RechazaTokenDeRecuperacion(t *testing.T) {
	resp := doRequest(t, buildTestApp(), "/protected", recoveryToken(t, pkgjwt.Identity{UserID: testUserID, Role: "user"}))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// RecoveryMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestRecoveryMiddleware_AceptaTokenDeRecuperacion(t *testing.T) {
	resp := doRequest(t, buildTestApp(), "/recover", recoveryToken(t, pkgjwt.Identity{UserID: testUserID, Role: "user"}))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecoveryMiddleware_RechazaSesion(t *testing.T) {
	resp := doRequest(t, buildTestApp(), "/recover", sessionToken(t, pkgjwt.Identity{UserID: testUserID, Role: "user"}))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRecoveryMiddleware_SinHeader(t *testing.T) {
	resp := doRequest(t, buildTestApp(), "/recover", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewares_NoLleganAlHandlerSiElTokenFalla(t *testing.T) {
	forged, err := pkgjwt.Generate("otro-secreto", testIssuer, pkgjwt.Identity{UserID: testUserID, Role: "user"}, testExpMin)
	require.NoError(t, err)

	reached := false
	handler := func(c *fiber.Ctx) error {
		reached = true
		return c.SendString("HANDLER")
	}
	app := fiber.New()
	app.Get("/protected", apphttp.AuthMiddleware(testJWTSecret), handler)
	app.Get("/recover", apphttp.RecoveryMiddleware(testJWTSecret), handler)

	for _, path := range []string{"/protected", "/recover"} {
		for _, h := range []string{"", "Basic abc", "Bearer " + forged} {
			reached = false
			resp := doRequest(t, app, path, h)
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path+" "+h)
			assert.NotContains(t, string(body), "HANDLER", path+" "+h)
			assert.False(t, reached, "%s %q no debe llegar al handler", path, h)
		}
	}
}
