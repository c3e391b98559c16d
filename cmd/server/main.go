package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/timecard/internal/auth"
	"github.com/mmynk/timecard/internal/config"
	"github.com/mmynk/timecard/internal/httpapi"
	"github.com/mmynk/timecard/internal/metrics"
	"github.com/mmynk/timecard/internal/service"
	"github.com/mmynk/timecard/internal/storage/sqlite"
	"github.com/mmynk/timecard/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Configure(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
	gin.SetMode(cfg.GinMode)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	m := metrics.New()
	opts := []service.Option{
		service.WithLocation(cfg.Location),
		service.WithMetrics(m),
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handlers: httpapi.NewHandlers(
			service.NewShiftService(store, opts...),
			service.NewDashboardService(store, opts...),
			cfg.Location,
		),
		JWTManager:  auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server starting", "address", srv.Addr, "timezone", cfg.Location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}
