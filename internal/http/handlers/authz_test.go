package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoutesNeedOwnerOrAdmin(t *testing.T) {
	a := newTestApp(t)
	owner := a.register("owner@example.com", "store_owner")
	storeID := a.myStoreID(owner)
	rival := a.register("rival@example.com", "store_owner")
	cust := a.register("buyer@example.com", "customer")
	admin := a.adminToken()

	paths := []string{
		"/api/orders/store/" + storeID,
		"/api/products/manage/" + storeID,
		"/api/stores/" + storeID,
		"/api/subscriptions/store/" + storeID,
	}
	for _, p := range paths {
		// some of these answer with arrays, so only status and raw body
		status, _ := a.do("GET", p, nil)
		assert.Equal(t, http.StatusUnauthorized, status, "anonymous %s", p)
		status, _ = a.do("GET", p, nil, bearer(cust))
		assert.Equal(t, http.StatusForbidden, status, "customer %s", p)
		status, _ = a.do("GET", p, nil, bearer(rival))
		assert.Equal(t, http.StatusForbidden, status, "other owner %s", p)
		status, raw := a.do("GET", p, nil, bearer(owner))
		assert.Equal(t, http.StatusOK, status, "owner %s", p)
		assert.True(t, json.Valid(raw), "owner %s", p)
		status, _ = a.do("GET", p, nil, bearer(admin))
		assert.Equal(t, http.StatusOK, status, "admin %s", p)
	}

	denied := 0
	for _, e := range a.logs.All() {
		if e.ContextMap()["kind"] == "security" {
			denied++
		}
	}
	assert.NotZero(t, denied)
}

func TestInvalidTokenIsUnauthorized(t *testing.T) {
	a := newTestApp(t)
	status, body := a.doJSON("GET", "/api/auth/me", nil, bearer("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["error"])

	tok := a.register("buyer@example.com", "customer")
	status, body = a.doJSON("GET", "/api/auth/me", nil, bearer(tok))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "buyer@example.com", body["email"])
	assert.NotContains(t, body, "password_hash")

	status, _ = a.doJSON("POST", "/api/auth/logout", nil, bearer(tok))
	require.Equal(t, http.StatusOK, status)
	status, _ = a.doJSON("GET", "/api/auth/me", nil, bearer(tok))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminRoutes(t *testing.T) {
	a := newTestApp(t)
	owner := a.register("owner@example.com", "store_owner")
	storeID := a.myStoreID(owner)
	cust := a.register("buyer@example.com", "customer")
	admin := a.adminToken()

	status, _ := a.doJSON("GET", "/api/admin/stats", nil, bearer(cust))
	assert.Equal(t, http.StatusForbidden, status)

	status, body := a.doJSON("GET", "/api/admin/stats", nil, bearer(admin))
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["users"])
	assert.EqualValues(t, 1, body["stores"])

	status, body = a.doJSON("PATCH", "/api/admin/stores/"+storeID+"/suspend", map[string]any{"suspended": true}, bearer(admin))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["isSuspended"])
	assert.Contains(t, a.auditActions(), "admin.stores.suspend")

	status, body = a.doJSON("GET", "/api/products/store/"+storeID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "store_unavailable", body["error"])

	status, _ = a.doJSON("PATCH", "/api/admin/stores/"+storeID+"/suspend", map[string]any{}, bearer(admin))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegisterValidation(t *testing.T) {
	a := newTestApp(t)
	cases := []map[string]any{
		{"email": "not-an-email", "password": "Str0ng!pass", "role": "customer"},
		{"email": "a@example.com", "password": "weak", "role": "customer"},
		{"email": "a@example.com", "password": "Str0ng!pass", "role": "admin"},
	}
	for _, c := range cases {
		status, body := a.doJSON("POST", "/api/auth/register", c)
		assert.Equal(t, http.StatusBadRequest, status, c)
		assert.Equal(t, "invalid_input", body["error"])
	}
}

func TestCustomerProfileUpdate(t *testing.T) {
	a := newTestApp(t)
	tok := a.register("buyer@example.com", "customer")

	status, body := a.doJSON("PATCH", "/api/customers/profile", map[string]any{"fullName": "Noura A."}, bearer(tok))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Noura A.", body["fullName"])

	status, body = a.doJSON("PUT", "/api/customers/profile", map[string]any{"preferredLanguage": "ar"}, bearer(tok))
	require.Equal(t, http.StatusOK, status, body)

	status, body = a.doJSON("GET", "/api/customers/profile", nil, bearer(tok))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Noura A.", body["fullName"])
	assert.Equal(t, "ar", body["preferredLanguage"])

	status, _ = a.doJSON("PATCH", "/api/customers/profile", map[string]any{"fullName": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
}
