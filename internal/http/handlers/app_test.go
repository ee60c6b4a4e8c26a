package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storelaunch/internal/config"
	"storelaunch/internal/http/handlers"
	applog "storelaunch/internal/log"
	"storelaunch/internal/repos"
)

type testApp struct {
	t    *testing.T
	app  *fiber.App
	logs *observer.ObservedLogs
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	t.Cleanup(applog.Set(zap.New(core)))

	cfg := config.Config{
		DBDSN:               ":memory:",
		RateLimitPerMin:     1000,
		SessionTTL:          time.Hour,
		CheckoutMaxAttempts: 3,
		CheckoutBackoff:     time.Millisecond,
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &testApp{t: t, app: handlers.NewApp(cfg, handlers.NewDeps(db, cfg, nil)), logs: logs}
}

type reqOpt func(*http.Request)

func bearer(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func session(sid string) reqOpt {
	return func(r *http.Request) { r.Header.Set("X-Session-Id", sid) }
}

func (a *testApp) do(method, path string, body any, opts ...reqOpt) (int, []byte) {
	a.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, raw
}

// doJSON performs the request and decodes the body into a map.
func (a *testApp) doJSON(method, path string, body any, opts ...reqOpt) (int, map[string]any) {
	a.t.Helper()
	status, raw := a.do(method, path, body, opts...)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(a.t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (a *testApp) register(email, role string) string {
	a.t.Helper()
	status, body := a.doJSON("POST", "/api/auth/register", map[string]any{
		"email": email, "password": "Str0ng!pass", "fullName": "Test User", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	return body["token"].(string)
}

func (a *testApp) login(email, password string, opts ...reqOpt) (int, map[string]any) {
	a.t.Helper()
	return a.doJSON("POST", "/api/auth/login", map[string]any{"email": email, "password": password}, opts...)
}

func (a *testApp) adminToken() string {
	a.t.Helper()
	status, body := a.login(repos.AdminEmail, "Admin@123")
	require.Equal(a.t, http.StatusOK, status, body)
	return body["token"].(string)
}

func (a *testApp) myStoreID(ownerToken string) string {
	a.t.Helper()
	status, raw := a.do("GET", "/api/stores/my", nil, bearer(ownerToken))
	require.Equal(a.t, http.StatusOK, status, string(raw))
	var stores []map[string]any
	require.NoError(a.t, json.Unmarshal(raw, &stores))
	require.Len(a.t, stores, 1)
	return stores[0]["id"].(string)
}

func (a *testApp) createProduct(ownerToken, storeID, name, price string, stock int) string {
	a.t.Helper()
	status, body := a.doJSON("POST", "/api/products/manage/"+storeID, map[string]any{
		"nameEn": name, "price": price, "stockQuantity": stock,
	}, bearer(ownerToken))
	require.Equal(a.t, http.StatusCreated, status, body)
	return body["id"].(string)
}

func (a *testApp) auditActions() []string {
	var out []string
	for _, e := range a.logs.All() {
		if e.ContextMap()["kind"] == "audit" {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestHealthAndUnknownRoute(t *testing.T) {
	a := newTestApp(t)
	status, body := a.doJSON("GET", "/api/health", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	status, body = a.doJSON("GET", "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", body["error"])
}
