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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/pBarszczewska/booking-api/internal/app"
	"github.com/pBarszczewska/booking-api/internal/clock"
	"github.com/pBarszczewska/booking-api/internal/config"
	"github.com/pBarszczewska/booking-api/internal/metrics"
	"github.com/pBarszczewska/booking-api/internal/notify"
	"github.com/pBarszczewska/booking-api/internal/storage/postgres"
	transporthttp "github.com/pBarszczewska/booking-api/internal/transport/http"
	"github.com/pBarszczewska/booking-api/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("no .env file loaded", slog.String("error", err.Error()))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("resolve booking time zone", slog.String("error", err.Error()))
		os.Exit(1)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect to db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Error("db ping", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Error("apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	var notifier app.Notifier
	mailjetSettings := notify.MailjetSettings{
		APIKey:      cfg.MailjetAPIKey,
		APISecret:   cfg.MailjetAPISecret,
		SenderEmail: cfg.SenderEmail,
		SenderName:  cfg.SenderName,
	}
	if mailjetSettings.Configured() {
		notifier = notify.NewMailjet(mailjetSettings)
		logger.Info("confirmation emails enabled", slog.String("sender", cfg.SenderEmail))
	} else {
		notifier = notify.NewLog(logger)
		logger.Info("mailjet credentials absent, logging confirmations instead")
	}

	reservationRepo := postgres.NewReservationRepository(pool)
	directoryRepo := postgres.NewDirectoryRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)

	clk := clock.NewSystem()
	bookingSvc := app.NewBookingService(reservationRepo, directoryRepo, directoryRepo, clk,
		app.WithNotifier(notifier),
		app.WithMetrics(collector),
		app.WithLogger(logger),
		app.WithLocation(loc),
		app.WithRetry(cfg.RetryAttempts, cfg.RetryBackoff),
	)
	availabilitySvc := app.NewAvailabilityService(reservationRepo, clk)
	adminSvc := app.NewAdminService(adminRepo, clk)

	rateLimiter := transporthttp.NewRateLimiter(transporthttp.RateLimiterConfig{
		Rate:            rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0),
		Burst:           cfg.RateLimitBurst,
		CleanupInterval: 5 * time.Minute,
	})
	defer rateLimiter.Stop()

	handler := transporthttp.NewRouter(transporthttp.RouterConfig{
		Bookings:     bookingSvc,
		Availability: availabilitySvc,
		Catalog:      adminSvc,
		Logger:       logger,
		Metrics:      collector,
		MetricsPage:  metrics.Handler(registry),
		RateLimiter:  rateLimiter,
		CORSOrigins:  cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", slog.String("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
