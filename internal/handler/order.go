package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"bunah-checkout/internal/dto"
	"bunah-checkout/internal/model"
	"bunah-checkout/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	checkoutService service.CheckoutService
	paymentService  service.PaymentService
	orderService    service.OrderService
	logger          *slog.Logger
}

func NewOrderHandler(
	checkoutService service.CheckoutService,
	paymentService service.PaymentService,
	orderService service.OrderService,
	logger *slog.Logger,
) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		paymentService:  paymentService,
		orderService:    orderService,
		logger:          logger,
	}
}

func (h *OrderHandler) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "cannot read body"})
	}
	if err := dto.ValidateCheckout(body); err != nil {
		return respondError(c, h.logger, "Failed to create checkout session", err)
	}

	var req dto.CheckoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Details: err.Error()})
	}

	resp, err := h.checkoutService.CreateCheckoutSession(ctx, &req)
	if err != nil {
		return respondError(c, h.logger, "Failed to create checkout session", err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ConfirmPayment(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "cannot read body"})
	}
	if err := dto.ValidateConfirmPayment(body); err != nil {
		return respondError(c, h.logger, "Failed to confirm payment", err)
	}

	var req dto.ConfirmPaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Details: err.Error()})
	}

	order, err := h.paymentService.ConfirmPayment(ctx, req.ClientReferenceID)
	if err != nil {
		return respondError(c, h.logger, "Failed to confirm payment", err)
	}

	return c.JSON(http.StatusOK, dto.OrderResponse{Order: order})
}

func (h *OrderHandler) GetOrderWithProducts(c echo.Context) error {
	resp, err := h.orderService.GetOrderWithProducts(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return respondError(c, h.logger, "Failed to fetch order", err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.ListCompleted(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "Failed to fetch orders", err)
	}
	if len(orders) == 0 {
		return c.JSON(http.StatusNotFound, dto.OrdersResponse{Message: "No orders found", Orders: []*model.Order{}})
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListOrdersByEmail(c echo.Context) error {
	orders, err := h.orderService.ListByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return respondError(c, h.logger, "Failed to fetch orders by email", err)
	}
	return c.JSON(http.StatusOK, dto.OrdersResponse{Orders: orders})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, "Failed to fetch order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, h.logger, "Failed to update order status", err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Order status updated successfully", Order: order})
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	order, err := h.orderService.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, "Failed to delete order", err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Order deleted successfully", Order: order})
}
