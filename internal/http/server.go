package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	customerHTTP "github.com/allisson/orders/internal/customer/http"
	"github.com/allisson/orders/internal/httputil"
	orderHTTP "github.com/allisson/orders/internal/order/http"
	productHTTP "github.com/allisson/orders/internal/product/http"
)

// ServerConfig holds the API server settings.
type ServerConfig struct {
	Host             string
	Port             int
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSEnabled      bool
	CORSAllowOrigins string
}

// Handlers groups the route handlers the server exposes.
type Handlers struct {
	Order    *orderHTTP.OrderHandler
	Product  *productHTTP.ProductHandler
	Customer *customerHTTP.CustomerHandler
}

// Server represents the API HTTP server
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new API server with all routes and middleware wired.
// metricsMiddleware may be nil when metrics are disabled; readyCheck reports
// dependency health for the readiness endpoint.
func NewServer(
	cfg ServerConfig,
	handlers Handlers,
	metricsMiddleware gin.HandlerFunc,
	readyCheck func(ctx context.Context) error,
	logger *slog.Logger,
) *Server {
	router := gin.New()
	router.Use(requestid.New())
	router.Use(LoggerMiddleware(logger))
	router.Use(RecoveryMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsMiddleware != nil {
		router.Use(metricsMiddleware)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/ready", func(c *gin.Context) {
		if readyCheck != nil {
			if err := readyCheck(c.Request.Context()); err != nil {
				httputil.HandleErrorGin(c, err, logger)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	v1 := router.Group("/v1")

	orders := v1.Group("/orders")
	{
		// Order creation is the write-heavy path, the rate limit applies
		// only here.
		createHandlers := []gin.HandlerFunc{}
		if cfg.RateLimitEnabled {
			createHandlers = append(createHandlers,
				RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		}
		createHandlers = append(createHandlers, handlers.Order.CreateHandler)

		orders.POST("", createHandlers...)
		orders.GET("/:id", handlers.Order.GetHandler)
		orders.GET("", handlers.Order.ListHandler)
	}

	products := v1.Group("/products")
	{
		products.POST("", handlers.Product.CreateHandler)
		products.GET("/sku/:sku", handlers.Product.GetBySKUHandler)
		products.GET("/:id", handlers.Product.GetHandler)
		products.PUT("/:id", handlers.Product.UpdateHandler)
		products.DELETE("/:id", handlers.Product.DeleteHandler)
		products.GET("", handlers.Product.ListHandler)
	}

	customers := v1.Group("/customers")
	{
		customers.POST("", handlers.Customer.CreateHandler)
		customers.GET("/email/:email", handlers.Customer.GetByEmailHandler)
		customers.GET("/:id", handlers.Customer.GetHandler)
		customers.PUT("/:id", handlers.Customer.UpdateHandler)
		customers.DELETE("/:id", handlers.Customer.DeleteHandler)
		customers.GET("", handlers.Customer.ListHandler)
	}

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
