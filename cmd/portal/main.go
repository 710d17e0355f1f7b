package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakpark-dental/clinic-portal/internal/api/router"
	"github.com/oakpark-dental/clinic-portal/internal/app/bootstrap"
	"github.com/oakpark-dental/clinic-portal/internal/booking"
	"github.com/oakpark-dental/clinic-portal/internal/calendar"
	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	appconfig "github.com/oakpark-dental/clinic-portal/internal/config"
	"github.com/oakpark-dental/clinic-portal/internal/directory"
	"github.com/oakpark-dental/clinic-portal/internal/http/handlers"
	"github.com/oakpark-dental/clinic-portal/internal/live"
	"github.com/oakpark-dental/clinic-portal/internal/observability/metrics"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting clinic-portal server",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.BackendBaseURL,
	)

	portalMetrics := metrics.NewPortalMetrics(nil)

	backend, err := clinicapi.New(clinicapi.Config{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.BackendTimeout,
	}, logger, portalMetrics)
	if err != nil {
		logger.Error("failed to build backend client", "error", err)
		os.Exit(1)
	}

	// The calendar surfaces keep rejected entries off the grid; the public
	// status lookup shows everything.
	calendarOpts := calendar.Options{}
	if cfg.HideRejectedOnCalendar {
		calendarOpts.Exclude = calendar.ExcludeRejected
	}
	calendarMerger := calendar.NewMerger(backend, logger, portalMetrics, calendarOpts)
	lookupMerger := calendar.NewMerger(backend, logger, portalMetrics, calendar.Options{})

	redisClient := bootstrap.BuildRedisClient(context.Background(), cfg, logger, true)
	dir := directory.New(backend, redisClient, cfg.DirectoryCacheTTL, logger)

	bookings := booking.NewService(backend, logger)
	hub := live.NewHub(calendarMerger, cfg.AdminPollInterval, cfg.SearchDebounce, portalMetrics, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		Calendar:           handlers.NewCalendarHandler(calendarMerger, dir, logger),
		SlotGate:           handlers.NewSlotGateHandler(calendarMerger, portalMetrics, logger),
		StatusLookup:       handlers.NewStatusLookupHandler(lookupMerger, logger),
		Booking:            handlers.NewBookingHandler(bookings, backend, logger),
		Directory:          handlers.NewDirectoryHandler(dir, logger),
		Visits:             handlers.NewVisitsHandler(backend, logger),
		Dashboard:          handlers.NewDashboardHandler(calendarMerger, hub, nil, logger),
		UIConfig:           handlers.NewUIConfigHandler(cfg.PublicPollInterval, cfg.AdminPollInterval, cfg.SearchDebounce),
		LiveHub:            hub,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
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

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
	logger.Info("server stopped")
}
