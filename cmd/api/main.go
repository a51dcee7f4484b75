package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lumina-dental/portal/internal/accounts"
	"github.com/lumina-dental/portal/internal/api/router"
	"github.com/lumina-dental/portal/internal/blog"
	"github.com/lumina-dental/portal/internal/booking"
	"github.com/lumina-dental/portal/internal/catalog"
	appconfig "github.com/lumina-dental/portal/internal/config"
	"github.com/lumina-dental/portal/internal/http/handlers"
	"github.com/lumina-dental/portal/internal/notify"
	"github.com/lumina-dental/portal/internal/observability/metrics"
	"github.com/lumina-dental/portal/internal/scheduling"
	"github.com/lumina-dental/portal/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting patient portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	bookingMetrics := metrics.NewBookingMetrics(nil)

	// Redis backs booking flow state and the catalog cache. Without it the
	// portal still runs, single-instance, on memory.
	var redisClient *redis.Client
	var flowStore booking.FlowStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, falling back to in-memory flow store", "error", err)
			redisClient = nil
		}
	}
	if redisClient != nil {
		flowStore = booking.NewRedisFlowStore(redisClient, cfg.BookingFlowTTL)
	} else {
		flowStore = booking.NewMemoryFlowStore()
	}

	// Accounts storage: Postgres when configured, memory otherwise.
	var repo accounts.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = accounts.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory account storage")
		repo = accounts.NewInMemoryRepository()
	}

	schedClient := scheduling.NewClient(scheduling.Config{
		BaseURL:  cfg.SchedulingBaseURL,
		Username: cfg.SchedulingUsername,
		Password: cfg.SchedulingPassword,
		Timeout:  cfg.SchedulingTimeout,
	}, bookingMetrics, logger)

	resolver := booking.NewCustomerResolver(schedClient, logger)
	var policy booking.OutcomePolicy = booking.StrictPolicy{}
	if cfg.OptimisticSubmit {
		policy = booking.NewOptimisticPolicy(cfg.BookingSubmitTimeout, logger)
	}
	submitter := booking.NewSubmitter(schedClient, resolver, policy, bookingMetrics, logger)

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else {
		logger.Warn("SENDGRID_API_KEY not set, confirmation emails disabled")
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(emailSender, logger)

	blogClient := blog.NewClient(blog.Config{
		BaseURL:   cfg.CMSBaseURL,
		ProjectID: cfg.CMSProjectID,
		Dataset:   cfg.CMSDataset,
	}, logger)

	sessions := accounts.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL)
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set, portal logins will fail")
	}

	catalogCache := catalog.NewCache(schedClient, redisClient, cfg.CatalogCacheTTL, logger)

	accountsHandler := accounts.NewHandler(repo, sessions, cfg.Env == "production", logger)
	catalogHandler := catalog.NewHandler(catalogCache, schedClient, logger)
	bookingHandler := handlers.NewBookingHandler(flowStore, submitter, repo, notifier, logger)
	blogHandler := blog.NewHandler(blogClient, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		AccountsHandler:    accountsHandler,
		CatalogHandler:     catalogHandler,
		BookingHandler:     bookingHandler,
		BlogHandler:        blogHandler,
		SessionVerifier:    sessions,
		SessionCookieName:  accounts.SessionCookieName,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

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

	logger.Info("server stopped")
}
