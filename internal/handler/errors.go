package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"bunah-checkout/internal/client"
	"bunah-checkout/internal/dto"
	"bunah-checkout/internal/service"

	"github.com/labstack/echo/v4"
)

// respondError maps service errors onto status codes. Only gateway failures
// echo upstream details back to the caller.
func respondError(c echo.Context, logger *slog.Logger, fallback string, err error) error {
	var (
		verr  *dto.ValidationError
		gwErr *client.GatewayError
	)

	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: verr.Message, Details: verr.Causes})
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrMissingReference),
		errors.Is(err, service.ErrMissingStatus),
		errors.Is(err, service.ErrPaymentNotSuccessful):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: rootMessage(err)})
	case errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Session not found"})
	case errors.Is(err, service.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Order not found"})
	case errors.Is(err, service.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Product not found"})
	case errors.As(err, &gwErr):
		logger.Error(fallback, "path", c.Path(), "status", gwErr.StatusCode, "error", err)
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: fallback, Details: gwErr.Details()})
	default:
		logger.Error(fallback, "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: fallback})
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrEmptyCart,
		service.ErrMissingReference,
		service.ErrMissingStatus,
		service.ErrPaymentNotSuccessful,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
