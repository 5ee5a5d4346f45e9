package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bunah-checkout/internal/client"
	"bunah-checkout/internal/dto"
	"bunah-checkout/internal/logging"
	"bunah-checkout/internal/model"
	"bunah-checkout/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCheckout struct {
	got  *dto.CheckoutRequest
	resp *dto.CheckoutResponse
	err  error
}

func (s *stubCheckout) CreateCheckoutSession(_ context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	s.got = req
	return s.resp, s.err
}

type stubPayment struct {
	order  *model.Order
	err    error
	called bool
}

func (s *stubPayment) ConfirmPayment(_ context.Context, ref string) (*model.Order, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	if ref == "" {
		return nil, service.ErrMissingReference
	}
	return s.order, nil
}

type stubOrders struct {
	service.OrderService
	err       error
	completed []*model.Order
}

func (s *stubOrders) ListCompleted(context.Context) ([]*model.Order, error) {
	return s.completed, s.err
}

func (s *stubOrders) UpdateStatus(_ context.Context, key, status string) (*model.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	if strings.TrimSpace(status) == "" {
		return nil, service.ErrMissingStatus
	}
	return &model.Order{OrderID: key, Status: status}, nil
}

func (s *stubOrders) Get(_ context.Context, key string) (*model.Order, error) {
	return nil, fmt.Errorf("get order: %w", service.ErrOrderNotFound)
}

func (s *stubOrders) ListByEmail(_ context.Context, email string) ([]*model.Order, error) {
	return nil, errors.New("connection refused")
}

func newTestEcho(h *OrderHandler) *echo.Echo {
	e := echo.New()
	e.POST("/orders/create-checkout-session", h.CreateCheckoutSession)
	e.POST("/orders/confirm-payment", h.ConfirmPayment)
	e.GET("/orders", h.ListOrders)
	e.GET("/orders/order/:id", h.GetOrder)
	e.GET("/orders/:email", h.ListOrdersByEmail)
	e.PATCH("/orders/update-order-status/:id", h.UpdateOrderStatus)
	return e
}

func do(e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestCreateCheckoutSession_Handler(t *testing.T) {
	checkout := &stubCheckout{resp: &dto.CheckoutResponse{ID: "checkout_1", PaymentLink: "https://pay/checkout_1", ClientReferenceID: "ref-1"}}
	e := newTestEcho(NewOrderHandler(checkout, &stubPayment{}, &stubOrders{}, logging.Discard()))

	rec, out := do(e, http.MethodPost, "/orders/create-checkout-session",
		`{"products":[{"_id":"p1","price":10,"quantity":3,"category":"الشيلات سادة"}],"country":"عُمان","shippingMethod":"المنزل"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "checkout_1", out["id"])
	assert.Equal(t, "https://pay/checkout_1", out["paymentLink"])
	require.NotNil(t, checkout.got)
	assert.Equal(t, "المنزل", checkout.got.ShippingMethod)
	assert.True(t, decimal.NewFromInt(10).Equal(checkout.got.Products[0].Price))
}

func TestCreateCheckoutSession_HandlerRejectsEmptyCart(t *testing.T) {
	checkout := &stubCheckout{}
	e := newTestEcho(NewOrderHandler(checkout, &stubPayment{}, &stubOrders{}, logging.Discard()))

	rec, out := do(e, http.MethodPost, "/orders/create-checkout-session", `{"products":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid or empty products array", out["error"])
	assert.Nil(t, checkout.got, "validation happens before the service is called")
}

func TestCreateCheckoutSession_HandlerGatewayFailure(t *testing.T) {
	gwErr := &client.GatewayError{Op: "create session", StatusCode: http.StatusUnauthorized, Body: []byte(`{"success":false,"description":"bad key"}`)}
	checkout := &stubCheckout{err: fmt.Errorf("create checkout session: %w", gwErr)}
	e := newTestEcho(NewOrderHandler(checkout, &stubPayment{}, &stubOrders{}, logging.Discard()))

	rec, out := do(e, http.MethodPost, "/orders/create-checkout-session", `{"products":[{"price":1,"quantity":1}]}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to create checkout session", out["error"])
	details, ok := out["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bad key", details["description"])
}

func TestConfirmPayment_HandlerStatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		body    string
		code    int
		message string
	}{
		{"ok", nil, `{"client_reference_id":"ref-1"}`, http.StatusOK, ""},
		{"missing reference", nil, `{}`, http.StatusBadRequest, "client_reference_id is required"},
		{"session not found", service.ErrSessionNotFound, `{"client_reference_id":"x"}`, http.StatusNotFound, "Session not found"},
		{"not paid", service.ErrPaymentNotSuccessful, `{"client_reference_id":"x"}`, http.StatusBadRequest, "payment not successful or session not found"},
		{"gateway down", fmt.Errorf("list sessions: %w", &client.GatewayError{Op: "list sessions", Err: context.DeadlineExceeded}), `{"client_reference_id":"x"}`, http.StatusBadGateway, "Failed to confirm payment"},
		{"database", errors.New("disk full"), `{"client_reference_id":"x"}`, http.StatusInternalServerError, "Failed to confirm payment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment := &stubPayment{order: &model.Order{OrderID: "ref-1", Status: model.OrderStatusCompleted}, err: tt.err}
			e := newTestEcho(NewOrderHandler(&stubCheckout{}, payment, &stubOrders{}, logging.Discard()))

			rec, out := do(e, http.MethodPost, "/orders/confirm-payment", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				order, ok := out["order"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "ref-1", order["orderId"])
				return
			}
			assert.Equal(t, tt.message, out["error"])
			if tt.code == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), "disk full")
			}
		})
	}
}

func TestOrderAdmin_Handlers(t *testing.T) {
	e := newTestEcho(NewOrderHandler(&stubCheckout{}, &stubPayment{}, &stubOrders{}, logging.Discard()))

	rec, out := do(e, http.MethodPatch, "/orders/update-order-status/ref-1", `{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order status updated successfully", out["message"])

	rec, out = do(e, http.MethodPatch, "/orders/update-order-status/ref-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status is required", out["error"])

	rec, out = do(e, http.MethodGet, "/orders/order/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", out["error"])

	rec, _ = do(e, http.MethodGet, "/orders/a@example.com", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestConfirmPayment_HandlerValidatesBeforeService(t *testing.T) {
	for _, body := range []string{`{"client_reference_id":""}`, `{"client_reference_id":42}`, `not json`} {
		t.Run(body, func(t *testing.T) {
			payment := &stubPayment{}
			e := newTestEcho(NewOrderHandler(&stubCheckout{}, payment, &stubOrders{}, logging.Discard()))

			rec, _ := do(e, http.MethodPost, "/orders/confirm-payment", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, payment.called)
		})
	}
}

func TestListOrders_Handler(t *testing.T) {
	e := newTestEcho(NewOrderHandler(&stubCheckout{}, &stubPayment{}, &stubOrders{}, logging.Discard()))

	rec, out := do(e, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No orders found", out["message"])
	assert.Equal(t, []any{}, out["orders"])

	orders := &stubOrders{completed: []*model.Order{{OrderID: "ref-1"}, {OrderID: "ref-2"}}}
	e = newTestEcho(NewOrderHandler(&stubCheckout{}, &stubPayment{}, orders, logging.Discard()))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "ref-1", list[0]["orderId"])
}
