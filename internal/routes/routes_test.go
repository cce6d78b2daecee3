package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/orderbot/internal/config"
	"github.com/Ananth-NQI/orderbot/internal/handlers"
	"github.com/Ananth-NQI/orderbot/internal/services"
	"github.com/Ananth-NQI/orderbot/internal/storage"
)

type echoConversation struct{}

func (echoConversation) HandleInbound(_ context.Context, msg services.InboundMessage) ([]string, error) {
	return []string{msg.Text}, nil
}

type noSessions struct{}

func (noSessions) Len() int { return 0 }

func newApp(env string) *fiber.App {
	return newAppWithToken(env, "")
}

func newAppWithToken(env, adminToken string) *fiber.App {
	cfg := &config.Config{
		Environment: env,
		AdminToken:  adminToken,
		VerifyToken: "verify",
		Meta:        config.MetaConfig{AppSecret: "app-secret"},
		Twilio:      config.TwilioConfig{AuthToken: "twilio-token"},
	}
	store := storage.NewMemoryStore()

	app := fiber.New()
	SetupRoutes(app, cfg, Handlers{
		WhatsApp: handlers.NewWhatsAppHandler(echoConversation{}, cfg.VerifyToken),
		Orders:   handlers.NewOrderHandler(store),
		Health:   handlers.NewHealthHandler("test", "orderbot", "meta", noSessions{}, store),
	})
	return app
}

func TestSetupRoutes_Development(t *testing.T) {
	t.Parallel()

	app := newApp("development")

	for _, path := range []string{"/", "/health", "/api/orders", "/webhook?hub.mode=subscribe&hub.verify_token=verify&hub.challenge=ok"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	req := httptest.NewRequest(http.MethodPost, "/test/message", strings.NewReader(`{"from":"57300","message":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "unsigned webhook accepted in development")
}

func TestSetupRoutes_ProductionRequiresSignatures(t *testing.T) {
	t.Parallel()

	app := newApp("production")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader("Body=hola"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/test/message", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetupRoutes_Metrics(t *testing.T) {
	t.Parallel()

	resp, err := newApp("development").Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestSetupRoutes_OrderAPIAccess(t *testing.T) {
	t.Parallel()

	get := func(app *fiber.App, auth string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNotFound, get(newApp("production"), ""), "no token: not mounted outside development")

	guarded := newAppWithToken("production", "admin-secret")
	assert.Equal(t, http.StatusUnauthorized, get(guarded, ""))
	assert.Equal(t, http.StatusUnauthorized, get(guarded, "Bearer wrong"))
	assert.Equal(t, http.StatusOK, get(guarded, "Bearer admin-secret"))

	devGuarded := newAppWithToken("development", "admin-secret")
	assert.Equal(t, http.StatusUnauthorized, get(devGuarded, ""), "token applies in development too")
}
