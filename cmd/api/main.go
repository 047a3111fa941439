package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"
	sharemitra "github.com/set-night/sharemitra"
	"github.com/set-night/sharemitra/internal/config"
	"github.com/set-night/sharemitra/internal/events"
	"github.com/set-night/sharemitra/internal/handler"
	"github.com/set-night/sharemitra/internal/lock"
	"github.com/set-night/sharemitra/internal/metrics"
	"github.com/set-night/sharemitra/internal/middleware"
	"github.com/set-night/sharemitra/internal/repository"
	"github.com/set-night/sharemitra/internal/service"
	"github.com/set-night/sharemitra/internal/telegram"
	"github.com/shopspring/decimal"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// Money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(sharemitra.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := repository.NewPGStore(pool)

	// Withdrawal locks
	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisAddress != "" {
		rdb, err := lock.Connect(ctx, cfg.RedisAddress)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb)
		slog.Info("using redis withdrawal locks", "address", cfg.RedisAddress)
	}

	// Domain events
	var publisher events.Publisher = events.Nop{}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		kp := events.NewKafkaPublisher(brokers, cfg.KafkaTopicEvents)
		defer kp.Close()
		publisher = kp
		slog.Info("publishing domain events", "brokers", brokers, "topic", cfg.KafkaTopicEvents)
	}

	// Operator log in Telegram
	var notifier service.Notifier
	if cfg.BotToken != "" {
		b, err := bot.New(cfg.BotToken)
		if err != nil {
			slog.Error("failed to create bot", "error", err)
			os.Exit(1)
		}
		notifier = telegram.NewOperatorLog(b, cfg)
	}

	m := metrics.New()

	// Initialize services
	oracle := service.NewOracleService(cfg.OracleAPIKey, cfg.OracleAPIURL, cfg.OracleModel)
	verifier := service.NewEvidenceVerifier(oracle, config.MinRecipients, m)
	razorpay := service.NewRazorpayService(cfg, m)

	var titles service.TitleFetcher
	if cfg.LinkPreviewEnabled {
		titles = service.NewLinkPreviewer()
	}

	walletService := service.NewWalletService(store)
	submissionService := service.NewSubmissionService(store, verifier, walletService, publisher, notifier, m)
	taskService := service.NewTaskService(store, store, titles)
	paymentMethodService := service.NewPaymentMethodService(store, razorpay)
	payoutService := service.NewPayoutService(store, razorpay, walletService, locker, publisher, notifier, m)

	limiter := middleware.NewRateLimiter(config.RateLimitPerSecond, config.RateLimitBurst, config.RateLimitIdleTTL)

	h := handler.New(handler.Deps{
		Submissions:    submissionService,
		Tasks:          taskService,
		Wallets:        walletService,
		PaymentMethods: paymentMethodService,
		Payouts:        payoutService,
		Store:          store,
		Metrics:        m,
		Limiter:        limiter,
		CORSOrigins:    cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	// Background loops
	go payoutService.RunReconciler(ctx, config.ReconcileInterval)
	go limiter.Cleanup(ctx, time.Minute)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown", "error", err)
		}
	}()

	slog.Info("starting api", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	slog.Info("api stopped gracefully")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
