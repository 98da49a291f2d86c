/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the investment platform server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags) — fail fast on missing
     secrets
  2. Initialize SQLite store
  3. Wire dispatcher (Resend or discard), payments, market data, sessions
  4. Configure HTTP router and the monthly window notifier
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, or PORT)
  -db      SQLite database path (default: invest.db, or DB_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - config/config.go: Configuration sources and validation
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ablelink/invest-engine/api"
	"github.com/ablelink/invest-engine/auth"
	"github.com/ablelink/invest-engine/calendar"
	"github.com/ablelink/invest-engine/config"
	"github.com/ablelink/invest-engine/market"
	"github.com/ablelink/invest-engine/notify"
	"github.com/ablelink/invest-engine/payment"
	"github.com/ablelink/invest-engine/store/sqlite"
	"github.com/ablelink/invest-engine/window"
	"github.com/ablelink/invest-engine/workflow"
)

func main() {
	cfg := config.MustLoad(os.Args[1:])

	// Store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Holiday calendar, optionally with an overridden Islamic table
	cal := calendar.New()
	if cfg.IslamicDatesPath != "" {
		table, err := calendar.LoadIslamicTable(cfg.IslamicDatesPath)
		if err != nil {
			log.Fatalf("Failed to load Islamic dates from %s: %v", cfg.IslamicDatesPath, err)
		}
		cal = calendar.NewWithIslamicTable(table)
	}
	windows := window.NewResolver(cal)

	// Notifications
	var dispatcher notify.Dispatcher = notify.Null{}
	if cfg.EmailEnabled {
		dispatcher = &notify.Resend{
			APIKey:     cfg.ResendAPIKey,
			From:       cfg.EmailFrom,
			AdminEmail: cfg.AdminEmail,
		}
	}

	// Sessions
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to initialize sessions: %v", err)
	}

	// Handler
	engine := workflow.New(store, dispatcher, nil)
	handler := api.NewHandler(store, engine, dispatcher, windows, tokens)
	if cfg.PaymentsEnabled {
		handler.Payments = &payment.Paystack{
			SecretKey:   cfg.PaystackSecretKey,
			CallbackURL: cfg.PaymentCallback,
		}
	}
	if cfg.TwelveDataAPIKey != "" {
		handler.Market = &market.TwelveData{APIKey: cfg.TwelveDataAPIKey}
	}

	// Router
	router := api.NewRouter(handler, cfg.CORSOrigins)

	// Monthly window notifier
	var scheduler *api.WindowScheduler
	if cfg.SchedulerEnabled {
		scheduler = api.NewWindowScheduler(handler, nil)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
