package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/mercato/internal"
	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/billing"
	"github.com/dukerupert/mercato/internal/discount"
	"github.com/dukerupert/mercato/internal/events"
	"github.com/dukerupert/mercato/internal/handler/api"
	"github.com/dukerupert/mercato/internal/middleware"
	"github.com/dukerupert/mercato/internal/notify"
	"github.com/dukerupert/mercato/internal/pricing"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/dukerupert/mercato/internal/router"
	"github.com/dukerupert/mercato/internal/routes"
	"github.com/dukerupert/mercato/internal/service"
	"github.com/dukerupert/mercato/internal/shipping"
	"github.com/dukerupert/mercato/internal/tax"
	"github.com/dukerupert/mercato/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nats-io/nats.go"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Error tracking and metrics
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Enabled:     cfg.Sentry.Enabled,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.Sentry.Release,
		SampleRate:  cfg.Sentry.SampleRate,
		Debug:       cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return err
	}
	defer flushSentry()

	telemetry.InitBusinessMetrics("mercato")
	metrics := middleware.NewMetrics("mercato", nil)

	// Run migrations over a database/sql handle
	logger.Info("Running database migrations...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := internal.RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	sqlDB.Close()
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	// Domain events, with an optional NATS mirror
	bus := events.NewBus(logger)
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL,
			nats.Name("mercato"),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("NATS drain failed", "error", err)
			}
		}()
		relay := events.NewNATSRelay(nc, cfg.NATS.SubjectPrefix)
		bus.Subscribe("nats-relay", relay.Handle)
		logger.Info("NATS event relay enabled", "url", nc.ConnectedUrlRedacted(), "prefix", cfg.NATS.SubjectPrefix)
	}

	broker := notify.NewBroker(notify.Config{
		IdleTimeout: cfg.Notify.IdleTimeout,
		BufferSize:  cfg.Notify.BufferSize,
	}, logger)

	// Payment gateways, in resolution order
	stripeConfig := billing.StripeConfig{
		SecretKey: cfg.Stripe.SecretKey,
		Live:      cfg.Stripe.Live,
	}
	stripeGateway, err := billing.NewStripeGateway(stripeConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe gateway: %w", err)
	}
	gateways := billing.NewResolver(stripeGateway, billing.NewPayPalGateway())
	logger.Info("Payment gateways initialized", "stripe_live", stripeConfig.Live, "stripe_test_mode", stripeConfig.IsTestMode())

	taxCalculator := tax.NewPercentageCalculator(cfg.Pricing.TaxRate)
	if cfg.Pricing.TaxRate.IsZero() {
		taxCalculator = tax.NewNoTaxCalculator()
	}
	pricer := pricing.NewCheckoutPricer(
		cfg.Pricing.CouponAmount,
		taxCalculator,
		shipping.NewStandardFlatRate(cfg.Pricing.ShippingFee),
	)
	discounts := discount.NewResolver(
		discount.FixedAmountStrategy{Amount: cfg.Discount.FixedAmount},
		discount.PercentageStrategy{Percent: cfg.Discount.Percent},
	)

	// Initialize services
	notificationService := service.NewNotificationService(store, broker, logger)
	cartService := service.NewCartService(store, logger)
	orderService := service.NewOrderService(store)

	productService, err := service.NewProductService(store, bus, discounts, cfg.Pricing.PriceCeiling, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize product service: %w", err)
	}

	checkoutService, err := service.NewCheckoutService(store, pricer, gateways, address.NewBasicValidator(), broker, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize checkout service: %w", err)
	}

	listener := service.NewCartImpactListener(store, notificationService, logger)
	bus.Subscribe("cart-impact", listener.Handle)

	// ==========================================================================
	// Routes
	// ==========================================================================

	checkoutLimiter := middleware.NewRateLimiter(middleware.CheckoutRateLimiterConfig())
	defer checkoutLimiter.Stop()

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithUser,
		middleware.WithRequestLogger(logger),
		telemetry.SentryMiddleware(),
		metrics.Middleware,
		router.CORS(cfg.CORSOrigins),
		middleware.APIHeaders,
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		router.Logger(logger),
	)

	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		Metrics: metrics.Handler(),
		Ping:    pool.Ping,
	})
	routes.RegisterAPIRoutes(r, routes.APIDeps{
		CheckoutHandler:     api.NewCheckoutHandler(checkoutService),
		CartHandler:         api.NewCartHandler(cartService),
		OrderHandler:        api.NewOrderHandler(orderService),
		ProductHandler:      api.NewProductHandler(productService),
		NotificationHandler: api.NewNotificationHandler(notificationService, broker),
		CheckoutLimiter:     checkoutLimiter.Middleware,
	})

	// ==========================================================================
	// Serve until signalled
	// ==========================================================================

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// Shutdown waits on handlers, so live streams are closed first.
	srv.RegisterOnShutdown(broker.CloseAll)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "active_streams", broker.Active())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
