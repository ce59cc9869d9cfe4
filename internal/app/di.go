// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/allisson/orders/internal/config"
	customerHTTP "github.com/allisson/orders/internal/customer/http"
	customerRepository "github.com/allisson/orders/internal/customer/repository"
	customerUsecase "github.com/allisson/orders/internal/customer/usecase"
	"github.com/allisson/orders/internal/database"
	"github.com/allisson/orders/internal/http"
	"github.com/allisson/orders/internal/messaging"
	"github.com/allisson/orders/internal/metrics"
	orderHTTP "github.com/allisson/orders/internal/order/http"
	orderRepository "github.com/allisson/orders/internal/order/repository"
	orderUsecase "github.com/allisson/orders/internal/order/usecase"
	outboxRepository "github.com/allisson/orders/internal/outbox/repository"
	outboxUsecase "github.com/allisson/orders/internal/outbox/usecase"
	productHTTP "github.com/allisson/orders/internal/product/http"
	productRepository "github.com/allisson/orders/internal/product/repository"
	productUsecase "github.com/allisson/orders/internal/product/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	messagingConn   *messaging.Connection

	// Managers
	txManager database.TxManager

	// Repositories
	orderRepo    orderUsecase.OrderRepository
	productRepo  productUsecase.ProductRepository
	customerRepo customerUsecase.CustomerRepository
	outboxRepo   outboxUsecase.OutboxEventRepository

	// Use Cases
	orderUseCase    orderUsecase.UseCase
	productUseCase  productUsecase.UseCase
	customerUseCase customerUsecase.UseCase
	outboxUseCase   outboxUsecase.UseCase

	// Messaging
	publisher *messaging.Publisher
	consumer  *messaging.Consumer

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	messagingConnInit   sync.Once
	txManagerInit       sync.Once
	orderRepoInit       sync.Once
	productRepoInit     sync.Once
	customerRepoInit    sync.Once
	outboxRepoInit      sync.Once
	orderUseCaseInit    sync.Once
	productUseCaseInit  sync.Once
	customerUseCaseInit sync.Once
	outboxUseCaseInit   sync.Once
	publisherInit       sync.Once
	consumerInit        sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It falls back to a
// no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to get metrics provider: %w", err)
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// MessagingConnection returns the shared RabbitMQ connection.
func (c *Container) MessagingConnection() *messaging.Connection {
	c.messagingConnInit.Do(func() {
		c.messagingConn = messaging.NewConnection(c.config.RabbitMQURL(), c.Logger())
	})
	return c.messagingConn
}

// OrderRepository returns the order repository instance.
func (c *Container) OrderRepository() (orderUsecase.OrderRepository, error) {
	c.orderRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["orderRepo"] = fmt.Errorf("failed to get database for order repository: %w", err)
			return
		}

		// Select the appropriate repository based on the database driver
		switch c.config.DBDriver {
		case "mysql":
			c.orderRepo = orderRepository.NewMySQLOrderRepository(db)
		case "postgres":
			c.orderRepo = orderRepository.NewPostgreSQLOrderRepository(db)
		default:
			c.initErrors["orderRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["orderRepo"]; exists {
		return nil, storedErr
	}
	return c.orderRepo, nil
}

// ProductRepository returns the product repository instance.
func (c *Container) ProductRepository() (productUsecase.ProductRepository, error) {
	c.productRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["productRepo"] = fmt.Errorf("failed to get database for product repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.productRepo = productRepository.NewMySQLProductRepository(db)
		case "postgres":
			c.productRepo = productRepository.NewPostgreSQLProductRepository(db)
		default:
			c.initErrors["productRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["productRepo"]; exists {
		return nil, storedErr
	}
	return c.productRepo, nil
}

// CustomerRepository returns the customer repository instance.
func (c *Container) CustomerRepository() (customerUsecase.CustomerRepository, error) {
	c.customerRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["customerRepo"] = fmt.Errorf("failed to get database for customer repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.customerRepo = customerRepository.NewMySQLCustomerRepository(db)
		case "postgres":
			c.customerRepo = customerRepository.NewPostgreSQLCustomerRepository(db)
		default:
			c.initErrors["customerRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["customerRepo"]; exists {
		return nil, storedErr
	}
	return c.customerRepo, nil
}

// OutboxRepository returns the outbox event repository instance.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	c.outboxRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["outboxRepo"] = fmt.Errorf("failed to get database for outbox repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.outboxRepo = outboxRepository.NewMySQLOutboxEventRepository(db)
		case "postgres":
			c.outboxRepo = outboxRepository.NewPostgreSQLOutboxEventRepository(db)
		default:
			c.initErrors["outboxRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// OrderUseCase returns the order use case instance, wrapped with metrics recording.
func (c *Container) OrderUseCase() (orderUsecase.UseCase, error) {
	c.orderUseCaseInit.Do(func() {
		useCase, err := c.initOrderUseCase()
		if err != nil {
			c.initErrors["orderUseCase"] = err
			return
		}
		c.orderUseCase = useCase
	})
	if storedErr, exists := c.initErrors["orderUseCase"]; exists {
		return nil, storedErr
	}
	return c.orderUseCase, nil
}

// ProductUseCase returns the product use case instance.
func (c *Container) ProductUseCase() (productUsecase.UseCase, error) {
	c.productUseCaseInit.Do(func() {
		productRepo, err := c.ProductRepository()
		if err != nil {
			c.initErrors["productUseCase"] = fmt.Errorf("failed to get product repository: %w", err)
			return
		}
		c.productUseCase = productUsecase.NewProductUseCase(productRepo)
	})
	if storedErr, exists := c.initErrors["productUseCase"]; exists {
		return nil, storedErr
	}
	return c.productUseCase, nil
}

// CustomerUseCase returns the customer use case instance.
func (c *Container) CustomerUseCase() (customerUsecase.UseCase, error) {
	c.customerUseCaseInit.Do(func() {
		customerRepo, err := c.CustomerRepository()
		if err != nil {
			c.initErrors["customerUseCase"] = fmt.Errorf("failed to get customer repository: %w", err)
			return
		}
		c.customerUseCase = customerUsecase.NewCustomerUseCase(customerRepo)
	})
	if storedErr, exists := c.initErrors["customerUseCase"]; exists {
		return nil, storedErr
	}
	return c.customerUseCase, nil
}

// OutboxUseCase returns the outbox dispatcher use case instance.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	c.outboxUseCaseInit.Do(func() {
		useCase, err := c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
			return
		}
		c.outboxUseCase = useCase
	})
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// Publisher returns the outbox event publisher.
func (c *Container) Publisher() *messaging.Publisher {
	c.publisherInit.Do(func() {
		c.publisher = messaging.NewPublisher(
			c.MessagingConnection(),
			c.config.RabbitMQExchange,
			c.Logger(),
		)
	})
	return c.publisher
}

// Consumer returns the inventory feedback consumer.
func (c *Container) Consumer() (*messaging.Consumer, error) {
	c.consumerInit.Do(func() {
		orderUseCase, err := c.OrderUseCase()
		if err != nil {
			c.initErrors["consumer"] = fmt.Errorf("failed to get order use case for consumer: %w", err)
			return
		}

		c.consumer = messaging.NewConsumer(
			messaging.ConsumerConfig{
				Exchange: c.config.RabbitMQExchange,
				Prefetch: c.config.ConsumerPrefetch,
			},
			c.MessagingConnection(),
			orderUseCase,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["consumer"]; exists {
		return nil, storedErr
	}
	return c.consumer, nil
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = fmt.Errorf("failed to get metrics provider: %w", err)
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.messagingConn != nil {
		if err := c.messagingConn.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("messaging connection close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initOrderUseCase creates the order use case with all its dependencies.
func (c *Container) initOrderUseCase() (orderUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for order use case: %w", err)
	}

	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for order use case: %w", err)
	}

	productRepo, err := c.ProductRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get product repository for order use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for order use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for order use case: %w", err)
	}

	useCase := orderUsecase.NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	return orderUsecase.NewOrderUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initOutboxUseCase creates the outbox dispatcher with all its dependencies.
func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	useCaseConfig := outboxUsecase.Config{
		Interval:  c.config.WorkerInterval,
		BatchSize: c.config.WorkerBatchSize,
	}

	return outboxUsecase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, c.Publisher(), c.Logger()), nil
}

// initHTTPServer creates the API HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	orderUseCase, err := c.OrderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get order use case for http server: %w", err)
	}

	productUseCase, err := c.ProductUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get product use case for http server: %w", err)
	}

	customerUseCase, err := c.CustomerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get customer use case for http server: %w", err)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	handlers := http.Handlers{
		Order:    orderHTTP.NewOrderHandler(orderUseCase, logger),
		Product:  productHTTP.NewProductHandler(productUseCase, logger),
		Customer: customerHTTP.NewCustomerHandler(customerUseCase, logger),
	}

	serverConfig := http.ServerConfig{
		Host:             c.config.ServerHost,
		Port:             c.config.ServerPort,
		RateLimitEnabled: c.config.RateLimitEnabled,
		RateLimitRPS:     c.config.RateLimitRequestsPerSec,
		RateLimitBurst:   c.config.RateLimitBurst,
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
	}

	readyCheck := func(ctx context.Context) error {
		return db.PingContext(ctx)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	var httpMetrics gin.HandlerFunc
	if provider != nil {
		httpMetrics = metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace)
	}

	return http.NewServer(serverConfig, handlers, httpMetrics, readyCheck, logger), nil
}
