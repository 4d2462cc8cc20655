package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeynil/BankBackOffice/internal/api"
	"github.com/honeynil/BankBackOffice/internal/config"
	"github.com/honeynil/BankBackOffice/internal/handler"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/kafka"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/redis"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/webhook"
	"github.com/honeynil/BankBackOffice/internal/observability"
	"github.com/honeynil/BankBackOffice/internal/repository/postgres"
	service "github.com/honeynil/BankBackOffice/internal/services"
	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	// Инициализируем логи, метрики, трейсы
	shutdownObservability := observability.Setup(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключаемся к Postgres
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		fatal("failed to open Postgres", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	err = db.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		fatal("failed to connect to Postgres", err)
	}

	if cfg.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			fatal("failed to apply schema", err)
		}
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		fatal("failed to connect to Redis", err)
	}
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	// Инициализируем сервисы
	deps := service.Deps{
		Store:    postgres.NewPostgresStore(db),
		Cache:    redisClient,
		Sessions: redisClient,
		Events:   service.NewKafkaPublisher(producer, cfg.EventsTopic),
		CacheTTL: cfg.AccountCacheTTL,
	}
	loans := service.NewLoanService(deps)
	authSvc := service.NewAuthService(deps.Store, redisClient, cfg.JWTSecret, cfg.TokenTTL)
	if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		fatal("failed to create admin account", err)
	}

	h := handler.NewHandler(handler.Services{
		Auth:          authSvc,
		Accounts:      service.NewAccountService(deps, loans),
		Ledger:        service.NewLedgerService(deps),
		Loans:         loans,
		Notifications: service.NewNotificationService(deps),
		Admin:         service.NewAdminService(deps),
	})

	// Kafka-консьюмер пересылает события ledger во внешний webhook
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.EventsTopic, cfg.EventsGroupID, webhook.NewClient(cfg.WebhookURL, 5*time.Second))
	go consumer.Consume(ctx)
	defer consumer.Close()

	// Запускаем сервер
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.SetupRouter(h, redisClient, cfg.JWTSecret),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := shutdownObservability(shutdownCtx); err != nil {
		slog.Error("observability shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
