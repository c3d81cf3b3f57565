package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakehouse/internal/catalog"
	"bakehouse/internal/config"
	"bakehouse/internal/database"
	"bakehouse/internal/handler"
	"bakehouse/internal/notify"
	"bakehouse/internal/payment"
	"bakehouse/internal/pricing"
	"bakehouse/internal/repository"
	"bakehouse/internal/router"
	"bakehouse/internal/schedule"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting bakehouse API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize catalog loader: S3 when enabled, local file otherwise
	var (
		catalogLoader catalog.Loader
		catalogKey    string
	)
	if cfg.Catalog.S3Enabled {
		s3Loader, err := catalog.NewS3Loader(ctx, cfg.Catalog.S3Bucket, cfg.Catalog.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 catalog loader, falling back to local file")
			catalogLoader = catalog.NewFileLoader(logger)
			catalogKey = cfg.Catalog.Path
		} else {
			catalogLoader = s3Loader
			catalogKey = cfg.Catalog.S3Key
		}
	} else {
		catalogLoader = catalog.NewFileLoader(logger)
		catalogKey = cfg.Catalog.Path
		logger.Info().Msg("using local file for catalog (S3 disabled)")
	}

	initial, err := catalogLoader.Load(ctx, catalogKey)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	catalogs := catalog.NewHolder(initial)

	// Initialize payment provider: live when a secret key is configured,
	// in-process simulator otherwise
	var provider payment.Provider
	if cfg.Payment.StripeSecretKey != "" {
		provider = payment.NewStripeClient(cfg.Payment.StripeSecretKey, logger)
	} else {
		logger.Warn().Msg("no payment secret key configured, using payment simulator")
		provider = payment.NewSimulator(logger)
	}

	// Initialize pricing
	verifier := pricing.NewVerifier(catalogs, logger)
	issuer := pricing.NewIssuer(verifier, provider, cfg.Payment.Currency, logger)

	// Initialize pickup slot generator from store hours
	scheduler := schedule.NewGenerator(schedule.Config{
		OpeningHour:  cfg.Store.OpeningHour,
		ClosingHour:  cfg.Store.ClosingHour,
		SlotInterval: time.Duration(cfg.Store.SlotIntervalMins) * time.Minute,
		PrepBuffer:   time.Duration(cfg.Store.PrepBufferMins) * time.Minute,
	}, logger)

	// Initialize notifier
	var notifier notify.Notifier
	if cfg.Email.SendGridAPIKey != "" {
		notifier = notify.NewSendGridNotifier(
			cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, logger)
	} else {
		logger.Warn().Msg("no email API key configured, confirmations will be logged only")
		notifier = notify.NewNopNotifier(logger)
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize HTTP handlers
	paymentIntentHandler := handler.NewPaymentIntentHandler(issuer, logger)
	emailHandler := handler.NewEmailHandler(notifier, logger)
	menuHandler := handler.NewMenuHandler(catalogs, catalogLoader, catalogKey, logger)
	orderHandler := handler.NewOrderHandler(orderRepo, logger)
	timeslotHandler := handler.NewTimeslotHandler(scheduler, logger)

	// Initialize router
	mux := router.New(paymentIntentHandler, emailHandler, menuHandler, orderHandler, timeslotHandler, cfg.Admin.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
