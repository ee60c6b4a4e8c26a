package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, v any) string {
	t.Helper()
	d, err := decimal.NewFromString(fmt.Sprint(v))
	require.NoError(t, err)
	return d.StringFixed(2)
}

func TestCheckoutOverHTTP(t *testing.T) {
	a := newTestApp(t)
	owner := a.register("owner@example.com", "store_owner")
	storeID := a.myStoreID(owner)
	productID := a.createProduct(owner, storeID, "Sukkari Dates", "10.00", 5)
	cust := a.register("buyer@example.com", "customer")

	status, body := a.doJSON("POST", "/api/cart/"+storeID+"/items", map[string]any{"productId": productID, "quantity": 2}, bearer(cust))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "20.00", money(t, body["subtotal"]))

	status, body = a.doJSON("POST", "/api/cart/"+storeID+"/checkout", map[string]any{"shippingAddress": "X"}, bearer(cust))
	require.Equal(t, http.StatusCreated, status, body)
	order := body["order"].(map[string]any)
	assert.Equal(t, "20.00", money(t, order["subtotal"]))
	assert.Equal(t, "20.00", money(t, order["total"]))
	assert.Equal(t, "pending", order["status"])
	assert.Len(t, body["items"], 1)
	assert.Contains(t, a.auditActions(), "order.placed")

	status, body = a.doJSON("GET", "/api/products/"+productID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["stockQuantity"])

	status, body = a.doJSON("GET", "/api/cart/"+storeID, nil, bearer(cust))
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])

	status, body = a.doJSON("POST", "/api/cart/"+storeID+"/checkout", map[string]any{"shippingAddress": "X"}, bearer(cust))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "empty_cart", body["error"])

	orderID := order["id"].(string)
	status, body = a.doJSON("POST", "/api/orders/my/"+orderID+"/confirm-payment", nil, bearer(cust))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "paid", body["order"].(map[string]any)["paymentStatus"])

	status, raw := a.do("GET", "/api/orders/my", nil, bearer(cust))
	require.Equal(t, http.StatusOK, status)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(raw, &mine))
	assert.Len(t, mine, 1)
}

func TestCheckoutErrors(t *testing.T) {
	a := newTestApp(t)
	owner := a.register("owner@example.com", "store_owner")
	storeID := a.myStoreID(owner)
	productID := a.createProduct(owner, storeID, "Ajwa", "30.00", 2)
	cust := a.register("buyer@example.com", "customer")

	status, body := a.doJSON("POST", "/api/cart/"+storeID+"/checkout", map[string]any{"shippingAddress": "X"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["error"])

	status, body = a.doJSON("POST", "/api/cart/"+storeID+"/checkout", map[string]any{"shippingAddress": "X"}, bearer(cust))
	assert.Equal(t, http.StatusNotFound, status, "no cart yet")
	assert.Equal(t, "not_found", body["error"])

	status, body = a.doJSON("POST", "/api/cart/missing-store/checkout", map[string]any{"shippingAddress": "X"}, bearer(cust))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "store_unavailable", body["error"])

	status, body = a.doJSON("POST", "/api/cart/"+storeID+"/items", map[string]any{"productId": productID, "quantity": 3}, bearer(cust))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "out_of_stock", body["error"])

	status, _ = a.doJSON("POST", "/api/cart/"+storeID+"/items", map[string]any{"productId": productID, "quantity": 2}, bearer(cust))
	require.Equal(t, http.StatusOK, status)

	// stock drops under the cart quantity before checkout
	status, _ = a.doJSON("PUT", "/api/products/"+productID, map[string]any{"stockQuantity": 1}, bearer(owner))
	require.Equal(t, http.StatusOK, status)

	status, body = a.doJSON("POST", "/api/cart/"+storeID+"/checkout", map[string]any{"shippingAddress": "X"}, bearer(cust))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "insufficient_stock", body["error"])
	assert.Equal(t, productID, body["productId"])
	assert.EqualValues(t, 2, body["requested"])
	assert.EqualValues(t, 1, body["available"])

	status, body = a.doJSON("POST", "/api/cart/"+storeID+"/checkout", map[string]any{}, bearer(cust))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_input", body["error"])
}

func TestAnonymousCartCarriesOverOnLogin(t *testing.T) {
	a := newTestApp(t)
	owner := a.register("owner@example.com", "store_owner")
	storeID := a.myStoreID(owner)
	a.createProduct(owner, storeID, "Tea", "3.00", 10)
	a.register("buyer@example.com", "customer")

	status, body := a.doJSON("GET", "/api/cart/"+storeID, nil, session("tab-9"))
	require.Equal(t, http.StatusOK, status, body)
	cart := body["cart"].(map[string]any)
	assert.Equal(t, "tab-9", cart["sessionId"])

	status, _ = a.login("buyer@example.com", "Str0ng!pass", session("tab-9"))
	require.Equal(t, http.StatusOK, status)
	status, body = a.doJSON("GET", "/api/cart/"+storeID, nil, session("tab-9"))
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, cart["id"], body["cart"].(map[string]any)["id"], "session cart was adopted")
}

func TestStoreOrderStatusOverHTTP(t *testing.T) {
	a := newTestApp(t)
	owner := a.register("owner@example.com", "store_owner")
	storeID := a.myStoreID(owner)
	productID := a.createProduct(owner, storeID, "Kunafa", "12.00", 4)
	cust := a.register("buyer@example.com", "customer")

	a.doJSON("POST", "/api/cart/"+storeID+"/items", map[string]any{"productId": productID, "quantity": 1}, bearer(cust))
	_, body := a.doJSON("POST", "/api/cart/"+storeID+"/checkout", map[string]any{"shippingAddress": "X"}, bearer(cust))
	orderID := body["order"].(map[string]any)["id"].(string)
	path := "/api/orders/store/" + storeID + "/" + orderID

	status, body := a.doJSON("PATCH", path, map[string]any{"status": "delivered"}, bearer(owner))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_transition", body["error"])

	status, body = a.doJSON("PATCH", path, map[string]any{"status": "cancelled"}, bearer(owner))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "cancelled", body["status"])

	_, body = a.doJSON("GET", "/api/products/"+productID, nil)
	assert.EqualValues(t, 4, body["stockQuantity"])
}

func TestPricesRejectExtraPrecision(t *testing.T) {
	a := newTestApp(t)
	owner := a.register("owner@example.com", "store_owner")
	storeID := a.myStoreID(owner)

	for _, price := range []string{"9.999", "-1"} {
		status, body := a.doJSON("POST", "/api/products/manage/"+storeID, map[string]any{
			"nameEn": "Qahwa", "price": price, "stockQuantity": 1,
		}, bearer(owner))
		assert.Equal(t, http.StatusBadRequest, status, price)
		assert.Equal(t, "invalid_input", body["error"], price)
	}

	status, body := a.doJSON("POST", "/api/stores/"+storeID+"/shipping-options", map[string]any{
		"name": "Express", "price": "7.505",
	}, bearer(owner))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_input", body["error"])

	id := a.createProduct(owner, storeID, "Qahwa", "9.99", 1)
	status, body = a.doJSON("PUT", "/api/products/"+id, map[string]any{"price": "1.005"}, bearer(owner))
	assert.Equal(t, http.StatusBadRequest, status)
	_, body = a.doJSON("GET", "/api/products/"+id, nil)
	assert.Equal(t, "9.99", money(t, body["price"]))
}
