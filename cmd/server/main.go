package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/symptomdx/internal/doctors"
	"github.com/Skufu/symptomdx/internal/logging"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("config error")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	var (
		db      HealthChecker
		finder  DoctorFinder
		admin   DoctorAdmin
		mapping SpecializationSource
	)
	if cfg.EnableDB {
		store, err := doctors.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("database connection failed")
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			logging.Fatal().Err(err).Msg("database schema setup failed")
		}
		db, finder, admin, mapping = store, store, store, store
	}

	pipeline, err := loadPipeline(ctx, cfg, mapping)
	if err != nil {
		logging.Fatal().Err(err).Msg("model initialization failed")
	}

	router := setupRouter(pipeline, db, finder, admin)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	logging.Info().Str("port", cfg.Port).Bool("db", cfg.EnableDB).Msg("server listening")
	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logging.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
