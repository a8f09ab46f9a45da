package presentation_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navanithaadhav/Herbal-Hot/internal/application"
	"github.com/navanithaadhav/Herbal-Hot/internal/domain"
	"github.com/navanithaadhav/Herbal-Hot/internal/gateway"
	"github.com/navanithaadhav/Herbal-Hot/internal/logger"
	"github.com/navanithaadhav/Herbal-Hot/internal/metrics"
	"github.com/navanithaadhav/Herbal-Hot/internal/presentation"
	"github.com/navanithaadhav/Herbal-Hot/internal/repository"
	"github.com/navanithaadhav/Herbal-Hot/internal/signature"
)

const testSecret = "test-secret"

func init() {
	logger.Init()
}

type env struct {
	router *chi.Mux
	repo   *repository.MockOrderRepo
	gw     *gateway.MockGateway
	sig    *signature.Verifier
	svc    *application.OrdersService
}

func newEnv() *env {
	repo := repository.NewMockOrderRepo()
	gw := gateway.NewMockGateway()
	sig := signature.NewVerifier(testSecret)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	svc := application.NewOrdersService(repo, gw, sig, nil, m, "INR")

	r := chi.NewRouter()
	presentation.NewOrdersHandler(svc).Register(r)
	return &env{router: r, repo: repo, gw: gw, sig: sig, svc: svc}
}

func (e *env) do(t *testing.T, method, path string, body any, staff bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if staff {
		req.Header.Set("X-User-Id", "admin-1")
		req.Header.Set("X-User-Email", "admin@example.com")
		req.Header.Set("X-User-Role", "staff")
	} else {
		req.Header.Set("X-User-Id", "user-1")
		req.Header.Set("X-User-Email", "user@example.com")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func createBody() map[string]any {
	return map[string]any{
		"orderItems": []map[string]any{
			{"product_id": "prod-1", "name": "Garam Masala", "price_minor": 10000, "qty": 1, "image": "/images/garam.jpg"},
		},
		"shippingAddress": map[string]any{
			"address": "123 Test St", "city": "Chennai", "postal_code": "600001", "country": "India",
		},
		"paymentMethod": "razorpay",
		"itemsPrice":    10000,
		"taxPrice":      1800,
		"shippingPrice": 0,
		"totalPrice":    11800,
	}
}

// createOrder drives the real create endpoint and returns the decoded order.
func (e *env) createOrder(t *testing.T) domain.Order {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/orders", createBody(), false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var o domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	return o
}

func payBody(e *env, gatewayOrderID, paymentID string) map[string]any {
	return map[string]any{
		"razorpay_payment_id": paymentID,
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_signature":  e.sig.Sign(gatewayOrderID, paymentID),
	}
}

func TestCreateOrder_ReturnsGatewayRef(t *testing.T) {
	e := newEnv()
	e.gw.RemoteID = "order_rzp_777"

	o := e.createOrder(t)
	assert.Equal(t, "order_rzp_777", o.GatewayOrderID)
	assert.False(t, o.IsPaid)
}

func TestCreateOrder_NoItems(t *testing.T) {
	e := newEnv()
	body := createBody()
	body["orderItems"] = []map[string]any{}

	rec := e.do(t, http.MethodPost, "/api/orders", body, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No order items", message(t, rec))
}

func TestCreateOrder_GatewayDownStillCreated(t *testing.T) {
	e := newEnv()
	e.gw.Err = domain.ErrGatewayUnavailable

	rec := e.do(t, http.MethodPost, "/api/orders", createBody(), false)
	require.Equal(t, http.StatusCreated, rec.Code)

	var o domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Empty(t, o.GatewayOrderID)
}

func TestCreateOrder_Anonymous(t *testing.T) {
	e := newEnv()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(createBody()))
	req := httptest.NewRequest(http.MethodPost, "/api/orders", &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmPayment_OK(t *testing.T) {
	e := newEnv()
	o := e.createOrder(t)

	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", o.ID), payBody(e, o.GatewayOrderID, "pay_rzp_456"), false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var paid domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	assert.True(t, paid.IsPaid)
	assert.Equal(t, "pay_rzp_456", paid.PaymentResult.PaymentID)
}

func TestConfirmPayment_MissingFields(t *testing.T) {
	e := newEnv()
	o := e.createOrder(t)

	body := payBody(e, o.GatewayOrderID, "pay_rzp_456")
	body["razorpay_signature"] = ""

	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", o.ID), body, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment verification failed: Missing required fields", message(t, rec))
}

func TestConfirmPayment_InvalidSignature(t *testing.T) {
	e := newEnv()
	o := e.createOrder(t)

	body := payBody(e, o.GatewayOrderID, "pay_rzp_456")
	body["razorpay_signature"] = "invalid_signature_string"

	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", o.ID), body, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment verification failed: Invalid signature", message(t, rec))

	// The generic message must not leak the expected value.
	assert.NotContains(t, rec.Body.String(), e.sig.Sign(o.GatewayOrderID, "pay_rzp_456"))
}

func TestConfirmPayment_SignatureForDifferentOrder(t *testing.T) {
	e := newEnv()
	e.gw.RemoteID = "order_rzp_cheap"
	e.createOrder(t)
	e.gw.RemoteID = "order_rzp_expensive"
	expensive := e.createOrder(t)

	// Valid signature, wrong order: bound to the cheap order's gateway ref.
	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", expensive.ID),
		payBody(e, "order_rzp_cheap", "pay_cheap_1"), false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment verification failed: Invalid signature", message(t, rec))
}

func TestConfirmPayment_NotFound(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPut, "/api/orders/0190c5c3-0000-7000-8000-000000000000/pay",
		payBody(e, "order_x", "pay_x"), false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", message(t, rec))
}

func TestConfirmPayment_AlreadyPaid(t *testing.T) {
	e := newEnv()
	o := e.createOrder(t)
	body := payBody(e, o.GatewayOrderID, "pay_rzp_456")

	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", o.ID), body, false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", o.ID), body, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMarkShipped_StaffOnly(t *testing.T) {
	e := newEnv()
	o := e.createOrder(t)

	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/ship", o.ID), nil, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkShipped_BeforePaid(t *testing.T) {
	e := newEnv()
	o := e.createOrder(t)

	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/ship", o.ID), nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "order is not paid yet", message(t, rec))
}

func TestFulfillmentFlow(t *testing.T) {
	e := newEnv()
	o := e.createOrder(t)

	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", o.ID), payBody(e, o.GatewayOrderID, "pay_rzp_456"), false)
	require.Equal(t, http.StatusOK, rec.Code)

	// Delivering before shipping is rejected.
	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/deliver", o.ID), nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/ship", o.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/deliver", o.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var delivered domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &delivered))
	assert.True(t, delivered.IsShipped)
	assert.True(t, delivered.IsDelivered)
}

func TestGetOrder_OwnershipHidden(t *testing.T) {
	e := newEnv()
	o := e.createOrder(t)

	// Another customer gets 404, not 403, so existence is not leaked.
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/orders/%s", o.ID), nil)
	req.Header.Set("X-User-Id", "user-2")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Staff sees it.
	rec2 := e.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%s", o.ID), nil, true)
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestListOrders_StaffOnly(t *testing.T) {
	e := newEnv()
	e.createOrder(t)

	rec := e.do(t, http.MethodGet, "/api/orders/", nil, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/orders/", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListMyOrders(t *testing.T) {
	e := newEnv()
	e.createOrder(t)
	e.createOrder(t)

	rec := e.do(t, http.MethodGet, "/api/orders/myorders", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Len(t, orders, 2)
}

// COD payment confirmation is a manual staff action; the customer has no
// signature to present and may not self-confirm.
func TestConfirmPayment_COD(t *testing.T) {
	e := newEnv()
	body := createBody()
	body["paymentMethod"] = "cod"

	rec := e.do(t, http.MethodPost, "/api/orders", body, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	var o domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	require.Empty(t, o.GatewayOrderID)

	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", o.ID), map[string]any{}, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", o.ID), map[string]any{}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var paid domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	assert.True(t, paid.IsPaid)
}
