/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payslip engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment (.env honoured)
  2. Parse command-line flags (they override the environment)
  3. Initialize SQLite store (runs migrations)
  4. Build the payslip generator and API handler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: PORT or 8080)
  -db      SQLite database path (default: DATABASE_PATH or payslip.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  See config/config.go. PAYSLIP_CURRENCY, PAYSLIP_TIMEZONE,
  PAYSLIP_ANCHOR_MODE, PAYSLIP_BATCH_CONCURRENCY and PAYSLIP_BATCH_RATE
  configure the generator.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/warp/payslip-engine/api"
	"github.com/warp/payslip-engine/config"
	"github.com/warp/payslip-engine/factory"
	"github.com/warp/payslip-engine/payroll"
	"github.com/warp/payslip-engine/store/sqlite"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", *dbPath).Msg("Failed to initialize database")
	}
	defer store.Close()

	generator := &payroll.Generator{
		Source:      store,
		Aggregator:  payroll.Aggregator{Anchor: cfg.Payslip.AnchorMode},
		Currency:    cfg.Payslip.Currency,
		Concurrency: cfg.Payslip.Concurrency,
	}
	handler := api.NewHandler(store, generator, factory.NewPaymentFactory(cfg.Payslip.Location))

	opts := api.RouterOptions{
		Logger:      log.Logger,
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.Payslip.BatchRatePerMinute > 0 {
		opts.BatchLimiter = api.NewRateLimiter(cfg.Payslip.BatchRatePerMinute)
		defer opts.BatchLimiter.Stop()
	}
	router := api.NewRouter(handler, opts)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Int("port", *port).
			Str("db", *dbPath).
			Str("currency", cfg.Payslip.Currency).
			Str("anchor_mode", string(generator.Aggregator.Anchor)).
			Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server stopped")
}
