package server

import (
	"context"
	"log/slog"
	"net/http"

	"bunah-checkout/internal/config"
	"bunah-checkout/internal/handler"
	"bunah-checkout/internal/middleware"
	"bunah-checkout/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const defaultBodyLimit = "1M"

type Server struct {
	echo         *echo.Echo
	orderHandler *handler.OrderHandler
	httpCfg      config.HTTPServer
}

func NewServer(
	httpCfg config.HTTPServer,
	checkoutService service.CheckoutService,
	paymentService service.PaymentService,
	orderService service.OrderService,
	logger *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				logger.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: allowedOrigins(httpCfg.AllowedOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))

	s := &Server{
		echo:         e,
		orderHandler: handler.NewOrderHandler(checkoutService, paymentService, orderService, logger),
		httpCfg:      httpCfg,
	}

	s.setupRoutes()
	return s
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func bodyLimit(limit string) string {
	if limit == "" {
		return defaultBodyLimit
	}
	return limit
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- orders --------
	orders := api.Group("/orders",
		middleware.RateLimit(s.httpCfg.RateLimitRPS, s.httpCfg.RateLimitBurst),
		echomw.BodyLimit(bodyLimit(s.httpCfg.BodyLimit)),
	)
	orders.POST("/create-checkout-session", s.orderHandler.CreateCheckoutSession)
	orders.POST("/confirm-payment", s.orderHandler.ConfirmPayment)
	orders.GET("/order-with-products/:orderId", s.orderHandler.GetOrderWithProducts)

	// -------- order admin --------
	orders.GET("", s.orderHandler.ListOrders)
	orders.GET("/order/:id", s.orderHandler.GetOrder)
	orders.GET("/:email", s.orderHandler.ListOrdersByEmail)
	orders.PATCH("/update-order-status/:id", s.orderHandler.UpdateOrderStatus)
	orders.DELETE("/delete-order/:id", s.orderHandler.DeleteOrder)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
