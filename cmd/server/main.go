package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/groupbuilder/internal/api"
	"github.com/dom/groupbuilder/internal/config"
	"github.com/dom/groupbuilder/internal/logger"
	"github.com/dom/groupbuilder/internal/repository/postgres"
	"github.com/dom/groupbuilder/internal/service"
	"github.com/dom/groupbuilder/internal/websocket"
	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()

	// Initialize database
	dbLogLevel := gormLogger.Warn
	if cfg.LogLevel == "debug" {
		dbLogLevel = gormLogger.Info
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, dbLogLevel)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize WebSocket hub
	hub := websocket.NewHub(log.Named("ws"))
	go hub.Run()

	// Initialize services
	services := service.NewServices(repos, cfg, service.Options{
		Notifier: hub,
		Logger:   log.Named("service"),
	})

	// Initialize router
	router := api.NewRouter(services, hub, cfg, log.Named("http"))

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	hub.Stop()

	log.Info("server stopped")
}
