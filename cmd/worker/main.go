package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"webhook-outbox/config"
	"webhook-outbox/internal/adapter/storage/memory"
	pgStorage "webhook-outbox/internal/adapter/storage/postgres"
	"webhook-outbox/internal/core/ports"
	"webhook-outbox/internal/service"
	"webhook-outbox/internal/telemetry"
	"webhook-outbox/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	hostname, _ := os.Hostname()
	workerID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	log.Info().
		Str("worker_id", workerID).
		Str("store", cfg.Worker.Store).
		Str("mode", cfg.Outbox.Mode()).
		Msg("Starting webhook outbox worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize metrics
	meterProvider, shutdownMetrics, err := telemetry.Init(ctx, cfg.Telemetry.OTLPEndpoint, "webhook-outbox-worker")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Metrics shutdown failed")
		}
	}()
	metrics, err := telemetry.NewMetrics(meterProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create metrics")
	}

	// Initialize storage. The claim strategy is fixed at startup: postgres
	// coordinates across processes, memory is single-process only.
	var (
		outboxRepo ports.OutboxRepository
		subRepo    ports.SubscriptionRepository
	)
	switch cfg.Worker.Store {
	case "memory":
		outboxRepo = memory.NewOutboxStore()
		subRepo = memory.NewSubscriptionStore()
		log.Warn().Msg("Using in-memory store; deliveries do not survive restarts")
	default:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		outboxRepo = pgStorage.NewOutboxRepo(pool)
		subRepo = pgStorage.NewSubscriptionRepo(pool)
	}

	if depther, ok := outboxRepo.(telemetry.QueueDepther); ok {
		if err := telemetry.RegisterQueueDepth(meterProvider, depther); err != nil {
			log.Warn().Err(err).Msg("Failed to register queue depth gauge")
		}
	}

	// Initialize the secret vault
	vaultSvc, err := newVault(cfg.Vault)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize secret vault")
	}
	secrets := service.NewSecretResolver(vaultSvc, subRepo, log)

	// Initialize the delivery pipeline
	validator := service.NewSSRFTargetValidator(net.DefaultResolver, cfg.Delivery.RequireHTTPS)
	sigSvc := service.NewHMACSignatureService()
	deliveryClient := service.NewHTTPDeliveryClient(
		&http.Client{Timeout: cfg.Delivery.Timeout},
		validator,
		sigSvc,
		cfg.Delivery.Timeout,
		log,
	)

	worker := service.NewWorker(
		service.WorkerConfig{
			WorkerID:     workerID,
			BatchSize:    cfg.Worker.BatchSize,
			PollInterval: cfg.Worker.PollInterval,
			LockTTL:      cfg.Worker.LockTTL,
			MaxAttempts:  cfg.Worker.MaxAttempts,
			Backoff: service.BackoffPolicy{
				Base:      cfg.Worker.BackoffBase,
				Cap:       cfg.Worker.BackoffCap,
				JitterMax: cfg.Worker.BackoffJitter,
			},
		},
		outboxRepo,
		subRepo,
		deliveryClient,
		secrets,
		metrics,
		log,
	)

	// Run until SIGINT/SIGTERM; the in-flight batch finishes before exit.
	worker.Run(ctx)

	log.Info().Msg("Worker stopped")
}

func newVault(cfg config.VaultConfig) (*service.AESVaultService, error) {
	if cfg.Passphrase != "" {
		return service.NewAESVaultServiceFromPassphrase(cfg.Passphrase, cfg.Salt, cfg.KeyID)
	}
	return service.NewAESVaultService(cfg.Key, cfg.KeyID)
}
