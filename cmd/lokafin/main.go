package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lokafin/lokafin/internal/app"
	"github.com/lokafin/lokafin/internal/auth"
	"github.com/lokafin/lokafin/internal/dashboard"
	"github.com/lokafin/lokafin/internal/finance/categories"
	"github.com/lokafin/lokafin/internal/finance/ledger"
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
	clock := shared.SystemClock()

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var dashCache *dashboard.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, dashboard cache disabled", slog.Any("error", err))
	} else {
		dashCache = dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	auditLogger := shared.NewAuditLogger(pool)
	idemStore := shared.NewIdempotencyStore(pool)

	authService := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret, cfg.JWTTTL, clock)
	authHandler := auth.NewHandler(logger, authService)

	companiesService := companies.NewService(companies.NewRepository(pool), clock)
	banksService := banks.NewService(banks.NewRepository(pool))
	accountsService := accounts.NewService(accounts.NewRepository(pool), clock, companiesService, banksService)
	methodsService := paymentmethods.NewService(paymentmethods.NewRepository(pool))

	categoriesService := categories.NewService(categories.NewRepository(pool), clock, auditLogger)
	payeesService := payees.NewService(payees.NewRepository(pool), clock, auditLogger)

	ledgerService := ledger.NewService(ledger.NewRepository(pool), clock, ledger.Directories{
		Categories:     categoriesService,
		Payees:         payeesService,
		Accounts:       accountsService,
		PaymentMethods: methodsService,
	}, auditLogger)

	dirs := settlement.Directories{
		Companies:      companiesService,
		Counterparties: payeesService,
		Categories:     categoriesService,
		Accounts:       accountsService,
		PaymentMethods: methodsService,
	}
	payablesModule := payables.New(logger, pool, clock, dirs, idemStore, auditLogger)
	receivablesModule := receivables.New(logger, pool, clock, dirs, idemStore, auditLogger)

	dashService := dashboard.NewService(dashboard.NewRepository(pool), ledgerService, dashCache, clock)

	if redisClient != nil {
		jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		if err := jobClient.EnqueueRefreshOverdue(ctx, settlement.DirectionPayable, settlement.DirectionReceivable); err != nil {
			logger.Warn("enqueue overdue refresh", slog.Any("error", err))
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		AuthService:           authService,
		AuthHandler:           authHandler,
		CategoriesHandler:     categories.NewHandler(logger, categoriesService),
		PayeesHandler:         payees.NewHandler(logger, payeesService),
		LedgerHandler:         ledger.NewHandler(logger, ledgerService),
		Payables:              payablesModule,
		Receivables:           receivablesModule,
		DashboardHandler:      dashboard.NewHandler(logger, dashService),
		CompaniesHandler:      companies.NewHandler(logger, companiesService),
		BanksHandler:          banks.NewHandler(logger, banksService),
		AccountsHandler:       accounts.NewHandler(logger, accountsService),
		PaymentMethodsHandler: paymentmethods.NewHandler(logger, methodsService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
