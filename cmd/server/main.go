package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/escrowpay/ledger/internal/adapter/http"
	"github.com/escrowpay/ledger/internal/adapter/http/handler"
	"github.com/escrowpay/ledger/internal/adapter/http/middleware"
	postgresRepo "github.com/escrowpay/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/escrowpay/ledger/internal/adapter/repository/redis"
	"github.com/escrowpay/ledger/internal/infrastructure/config"
	"github.com/escrowpay/ledger/internal/infrastructure/eventpublisher"
	"github.com/escrowpay/ledger/internal/infrastructure/logger"
	"github.com/escrowpay/ledger/internal/infrastructure/metrics"
	"github.com/escrowpay/ledger/internal/infrastructure/postgres"
	"github.com/escrowpay/ledger/internal/infrastructure/redis"
	"github.com/escrowpay/ledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.Service,
	})

	ctx := context.Background()

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, redis.Config{
		URL:          cfg.RedisURL,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	messageRepo := postgresRepo.NewMessageRepository(pool)
	batchRepo := postgresRepo.NewBatchRepository(pool)
	lineRepo := postgresRepo.NewLineRepository(pool)
	idemRepo := postgresRepo.NewIdempotencyRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	cache := redisRepo.NewCache(redisClient)
	sequences := redisRepo.NewSequenceProvider(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	var outboxRepo usecase.OutboxRepository = postgresRepo.NewNullOutboxRepository()
	if cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}

	messageSvc := usecase.NewMessageService(messageRepo, auditRepo, outboxRepo, sequences, idGen, m, log)
	postingSvc := usecase.NewPostingService(
		txManager, accountRepo, batchRepo, lineRepo, messageRepo,
		idemRepo, outboxRepo, auditRepo, idGen, retrier, cache, m, log,
	)
	accountSvc := usecase.NewAccountService(accountRepo, auditRepo, idGen, cache, m, log)
	ledgerSvc := usecase.NewLedgerService(messageSvc, postingSvc, log)
	consistencySvc := usecase.NewConsistencyService(ledgerRepo)
	querySvc := usecase.NewQueryService(batchRepo, lineRepo)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountSvc, querySvc),
		LedgerHandler:      handler.NewLedgerHandler(ledgerSvc),
		MessageHandler:     handler.NewMessageHandler(messageSvc, querySvc),
		BatchHandler:       handler.NewBatchHandler(querySvc),
		ConsistencyHandler: handler.NewConsistencyHandler(consistencySvc),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		Logging:            middleware.NewLoggingMiddleware(log),
		Metrics:            middleware.NewMetricsMiddleware(m),
		Recovery:           middleware.NewRecoveryMiddleware(log),
		IdempotencyStore:   idempotencyStore,
	}
	if cfg.RateLimitEnabled {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	if cfg.OutboxEnabled {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(log),
			Metrics:    m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		})
		go func() {
			if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
				log.Error().Err(err).Msg("outbox publisher stopped")
			}
		}()
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func listenAddr(port string) string {
	return ":" + port
}
