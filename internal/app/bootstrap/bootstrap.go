package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	mailservice "beacon/contexts/delivery/mail-service"
	mailpostgres "beacon/contexts/delivery/mail-service/adapters/postgres"
	mailworkers "beacon/contexts/delivery/mail-service/application/workers"
	webhookservice "beacon/contexts/delivery/webhook-service"
	webhookpostgres "beacon/contexts/delivery/webhook-service/adapters/postgres"
	"beacon/internal/platform/config"
	"beacon/internal/platform/db"
	"beacon/internal/platform/httpclient"
	"beacon/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	webhooks webhookservice.Module
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres   *db.Postgres
	dispatcher *mailworkers.Dispatcher
	interval   time.Duration
	logger     *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	deliverer := httpclient.New(logger)

	mailRepo := mailpostgres.NewRepository(pg.DB, logger)
	mailModule := mailservice.NewModule(mailservice.Dependencies{
		Repository:   mailRepo,
		Clock:        mailpostgres.SystemClock{},
		IDGenerator:  mailpostgres.UUIDGenerator{},
		Deliverer:    deliverer,
		MailEndpoint: cfg.MailEndpoint,
		MailAPIKey:   cfg.MailAPIKey,
		BatchSize:    cfg.DispatchBatchSize,
		SendTimeout:  cfg.DeliveryTimeout,
		Logger:       logger,
	})

	webhookRepo := webhookpostgres.NewRepository(pg.DB, logger)
	webhookModule := webhookservice.NewModule(webhookservice.Dependencies{
		Repository:      webhookRepo,
		Clock:           webhookpostgres.SystemClock{},
		IDGenerator:     webhookpostgres.UUIDGenerator{},
		SecretGenerator: webhookpostgres.HexSecretGenerator{},
		Deliverer:       deliverer,
		MaxInFlight:     cfg.FanoutMaxInFlight,
		SendTimeout:     cfg.DeliveryTimeout,
		UserAgent:       cfg.WebhookUserAgent,
		Logger:          logger,
	})

	server := httpserver.New(mailModule, webhookModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		webhooks: webhookModule,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if strings.TrimSpace(cfg.MailEndpoint) == "" {
		return nil, errors.New("MAIL_ENDPOINT is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := mailpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		dispatcher: &mailworkers.Dispatcher{
			Repository: repo,
			Deliverer:  httpclient.New(logger),
			Clock:      mailpostgres.SystemClock{},
			Endpoint:   cfg.MailEndpoint,
			APIKey:     cfg.MailAPIKey,
			BatchSize:  cfg.DispatchBatchSize,
			Timeout:    cfg.DeliveryTimeout,
			Logger:     logger,
		},
		interval: cfg.DispatchInterval,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	a.webhooks.Dispatcher.Drain()
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"dispatch_interval", w.interval.String(),
	)
	w.dispatcher.Start(ctx, w.interval)
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
