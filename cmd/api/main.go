package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medhive/marketplace-platform/internal/api/router"
	"github.com/medhive/marketplace-platform/internal/booking"
	"github.com/medhive/marketplace-platform/internal/catalog"
	appconfig "github.com/medhive/marketplace-platform/internal/config"
	"github.com/medhive/marketplace-platform/internal/consent"
	"github.com/medhive/marketplace-platform/internal/notify"
	"github.com/medhive/marketplace-platform/internal/observability/metrics"
	"github.com/medhive/marketplace-platform/internal/offerings"
	"github.com/medhive/marketplace-platform/internal/payments"
	"github.com/medhive/marketplace-platform/internal/providers"
	"github.com/medhive/marketplace-platform/internal/users"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting marketplace API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage. Without DATABASE_URL the server runs on in-memory stores,
	// which is only useful for local development.
	var (
		bookingRepo   booking.Repository
		catalogRepo   catalog.Repository
		providersRepo providers.Repository
		usersRepo     users.Repository
		paymentsRepo  payments.Repository
		offeringsRepo offerings.Repository
		sqlDB         *sql.DB
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}

		sqlDB, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database/sql handle", "error", err)
			os.Exit(1)
		}
		defer func() { _ = sqlDB.Close() }()

		bookingRepo = booking.NewPostgresRepository(pool)
		catalogRepo = catalog.NewPostgresRepository(pool)
		usersRepo = users.NewPostgresRepository(pool)
		paymentsRepo = payments.NewPostgresRepository(pool)
		providersRepo = providers.NewSQLRepository(sqlDB)
		offeringsRepo = offerings.NewSQLRepository(sqlDB)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		bookingRepo = booking.NewInMemoryRepository()
		catalogRepo = catalog.NewInMemoryRepository()
		usersRepo = users.NewInMemoryRepository()
		paymentsRepo = payments.NewInMemoryRepository()
		providersRepo = providers.NewInMemoryRepository()
		offeringsRepo = offerings.NewInMemoryRepository()
	}

	// Redis backs the availability cache and the refund velocity limiter.
	// Both fail open, so a missing redis only costs the protection.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	// Email delivery
	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sg != nil {
			sender = sg
		}
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		if ses := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
		}, logger); ses != nil {
			sender = ses
		}
	default:
		logger.Info("email delivery disabled")
	}
	notifySvc := notify.NewService(sender, usersRepo, providersRepo, logger)

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	bookingSvc := booking.NewService(bookingRepo, catalogRepo, providersRepo, usersRepo, notifySvc, logger).
		WithCache(booking.NewAvailabilityCache(redisClient, cfg.AvailabilityTTL, logger)).
		WithMetrics(bookingMetrics).
		WithMaxAdvanceDays(cfg.MaxRescheduleDays)

	paymentsSvc := payments.NewService(paymentsRepo, bookingRepo, bookingSvc, logger).
		WithVelocityChecker(payments.NewVelocityChecker(redisClient, payments.VelocityConfig{
			MaxRefundsPerUser: cfg.RefundsPerWindow,
			RefundWindow:      cfg.RefundWindow,
		}, logger))

	offeringsSvc := offerings.NewService(offeringsRepo, catalogRepo, providersRepo, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		BookingHandler:     booking.NewHandler(bookingSvc, logger),
		CatalogHandler:     catalog.NewHandler(catalogRepo, logger),
		ProvidersHandler:   providers.NewHandler(providersRepo, logger),
		PaymentsHandler:    payments.NewHandler(paymentsSvc, logger),
		OfferingsHandler:   offerings.NewHandler(offeringsSvc, logger),
		MetricsHandler:     promhttp.Handler(),
		AdminJWTSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if sqlDB != nil {
		routerCfg.ConsentHandler = consent.NewHandler(consent.NewService(sqlDB, logger), logger)
	} else {
		logger.Warn("consent endpoints disabled without a database")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
