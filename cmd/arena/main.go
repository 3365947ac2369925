package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/arena-club/arena-club/internal/academy"
	"github.com/arena-club/arena-club/internal/app"
	"github.com/arena-club/arena-club/internal/history"
	"github.com/arena-club/arena-club/internal/hotel"
	"github.com/arena-club/arena-club/internal/notify"
	"github.com/arena-club/arena-club/internal/observability"
	"github.com/arena-club/arena-club/internal/payments"
	"github.com/arena-club/arena-club/internal/platform/cache"
	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/reports"
	"github.com/arena-club/arena-club/internal/roles"
	"github.com/arena-club/arena-club/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Error("init migrator", slog.Any("error", err))
		os.Exit(1)
	}
	if err := migrator.Up(ctx); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("close migrator", slog.Any("error", err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	var store *cache.Store
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping, caching disabled", slog.Any("error", err))
	} else {
		store = cache.NewStore(redisClient, cfg.CacheTTL)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()
	notifier := notify.NewAsynqNotifier(asynqClient, logger)

	metrics := observability.NewMetrics()
	runner := &db.PoolRunner{Pool: pool}

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)

	rolesRepo := roles.NewRepository(pool)
	engine := roles.NewEngine(runner, rolesRepo, logger, metrics)

	academyRepo := academy.NewRepository(pool)
	academyService := academy.NewService(runner, academyRepo, usersRepo, rolesRepo, engine, notifier, logger)

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(runner, paymentsRepo, usersRepo, rolesRepo, engine, notifier, logger)

	hotelRepo := hotel.NewRepository(pool)
	hotelService := hotel.NewService(runner, hotelRepo, usersRepo, store, notifier, logger)

	historyRepo := history.NewRepository(pool)
	historyService := history.NewService(historyRepo, usersRepo)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, store, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		UsersHandler:    users.NewHandler(logger, usersService),
		RolesHandler:    roles.NewHandler(logger, engine),
		AcademyHandler:  academy.NewHandler(logger, academyService),
		PaymentsHandler: payments.NewHandler(logger, paymentsService),
		HotelHandler:    hotel.NewHandler(logger, hotelService),
		HistoryHandler:  history.NewHandler(logger, historyService),
		ReportsHandler:  reports.NewHandler(logger, reportsService),
		Metrics:         metrics,
	})

	if err := app.Serve(ctx, cfg, logger, router); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("serve", slog.Any("error", err))
		os.Exit(1)
	}
}
