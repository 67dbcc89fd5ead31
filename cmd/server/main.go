package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	api "rentloop-backend/internal/api/http"
	"rentloop-backend/internal/config"
	"rentloop-backend/internal/feed"
	"rentloop-backend/internal/logger"
	"rentloop-backend/internal/repository/postgres"
	"rentloop-backend/internal/security"
	"rentloop-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentloop Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.From, cfg.SendGrid.FromName)
	dispatcher := service.NewNoticeDispatcher(emailSvc, cfg.Dispatch.Workers, cfg.Dispatch.QueueSize, cfg.Dispatch.MaxRetries)
	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	dispatcher.Start(dispatchCtx)
	defer func() {
		cancelDispatch()
		dispatcher.Stop()
	}()

	changeFeed := feed.New()

	lifecycleSvc := service.NewLifecycleService(
		store.RentalRepository,
		store.InspectionRepository,
		store.ClaimRepository,
		store.UserRepository,
		store.NotificationRepository,
		dispatcher,
		changeFeed,
		service.Policy{
			PickupCancelWindow:     time.Duration(cfg.Rental.PickupCancelWindowHours) * time.Hour,
			LateCancelPenaltyCents: int32(cfg.Rental.LateCancelPenaltyCents),
		},
	)

	querySvc := service.NewQueryService(
		store.RentalRepository,
		store.ItemRepository,
		store.InspectionRepository,
		store.ClaimRepository,
		store.LedgerRepository,
	)

	router := mux.NewRouter()
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(api.AuthMiddleware(tokenManager))
	api.NewRentalHandler(lifecycleSvc, querySvc, changeFeed).Register(apiRouter)
	api.NewInspectionHandler(store.InspectionRepository, store.RentalRepository).Register(apiRouter)
	api.NewNotificationHandler(store.NotificationRepository).Register(apiRouter)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
