package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/lokafin/lokafin/internal/app"
	"github.com/lokafin/lokafin/internal/dashboard"
	"github.com/lokafin/lokafin/internal/finance/categories"
	"github.com/lokafin/lokafin/internal/finance/payables"
	"github.com/lokafin/lokafin/internal/finance/payees"
	"github.com/lokafin/lokafin/internal/finance/receivables"
	"github.com/lokafin/lokafin/internal/finance/settlement"
	"github.com/lokafin/lokafin/internal/masterdata/accounts"
	"github.com/lokafin/lokafin/internal/masterdata/banks"
	"github.com/lokafin/lokafin/internal/masterdata/companies"
	"github.com/lokafin/lokafin/internal/masterdata/paymentmethods"
	"github.com/lokafin/lokafin/internal/platform/cache"
	"github.com/lokafin/lokafin/internal/platform/db"
	"github.com/lokafin/lokafin/internal/shared"
	"github.com/lokafin/lokafin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	clock := shared.SystemClock()

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var dashService *dashboard.Service
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, dashboard invalidation disabled", slog.Any("error", err))
	} else {
		dashCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
		dashService = dashboard.NewService(dashboard.NewRepository(pool), nil, dashCache, clock)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	auditLogger := shared.NewAuditLogger(pool)
	idemStore := shared.NewIdempotencyStore(pool)

	companiesService := companies.NewService(companies.NewRepository(pool), clock)
	banksService := banks.NewService(banks.NewRepository(pool))
	accountsService := accounts.NewService(accounts.NewRepository(pool), clock, companiesService, banksService)
	methodsService := paymentmethods.NewService(paymentmethods.NewRepository(pool))
	categoriesService := categories.NewService(categories.NewRepository(pool), clock, auditLogger)
	payeesService := payees.NewService(payees.NewRepository(pool), clock, auditLogger)

	dirs := settlement.Directories{
		Companies:      companiesService,
		Counterparties: payeesService,
		Categories:     categoriesService,
		Accounts:       accountsService,
		PaymentMethods: methodsService,
	}
	payablesModule := payables.New(logger, pool, clock, dirs, idemStore, auditLogger)
	receivablesModule := receivables.New(logger, pool, clock, dirs, idemStore, auditLogger)

	refreshPayables, err := jobs.NewRefreshOverdueTask(settlement.DirectionPayable)
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}
	refreshReceivables, err := jobs.NewRefreshOverdueTask(settlement.DirectionReceivable)
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{
				Type:    jobs.TaskRefreshOverdue,
				Handler: jobs.NewRefreshOverdueHandler(logger, payablesModule.Service, receivablesModule.Service, dashService),
			},
			{
				Type:    jobs.TaskIdempotencyCleanup,
				Handler: jobs.NewIdempotencyCleanupHandler(logger, idemStore, cfg.IdempotencyRetention),
			},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: refreshPayables},
			{Spec: "*/15 * * * *", Task: refreshReceivables},
			{Spec: "0 3 * * *", Task: jobs.NewIdempotencyCleanupTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
