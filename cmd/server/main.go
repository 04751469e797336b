package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	"alertgate/internal/api"
	"alertgate/internal/api/handlers"
	"alertgate/internal/api/middleware"
	"alertgate/internal/engine/adapters"
	"alertgate/internal/engine/ingest"
	"alertgate/internal/engine/webhooks"
	"alertgate/internal/pkg/logger"
	"alertgate/internal/platform/audit"
	"alertgate/internal/platform/auth"
	"alertgate/internal/platform/config"
	"alertgate/internal/platform/database"
	"alertgate/internal/platform/models"
	"alertgate/internal/platform/repositories"
	"alertgate/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.MigrateUp(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	alertRepo := repositories.NewAlertRepository(db)
	subRepo := repositories.NewSubscriptionRepository(db)
	keyRepo := repositories.NewAPIKeyRepository(db)
	auditLog := audit.NewLogger(db)

	// Engine
	ledger := webhooks.NewLedger(cfg.Webhooks.MaxDeliveries)
	deduper := webhooks.NewDeduper(cfg.Webhooks.DedupMaxEntries, cfg.Webhooks.DedupWindow)
	registry := adapters.NewRegistry()
	fanout := webhooks.NewFanout(subRepo, ledger, cfg.Webhooks.DispatchTimeout)
	dispatcher := webhooks.NewHTTPDispatcher(cfg.Webhooks.DispatchTimeout, "")
	replayer := webhooks.NewReplayer(ledger, dispatcher, subRepo, cfg.Webhooks.MaxRetries)

	ingestSvc := ingest.NewService(registry, deduper, cfg.Webhooks.Secret,
		archiveAlerts(alertRepo),
		func(alert models.WebhookAlert) {
			fanout.Publish("alert.triggered", alert)
		},
	)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)

	// Handlers
	deps := &api.Dependencies{
		IngestHandler:       handlers.NewIngestHandler(ingestSvc),
		DeliveryHandler:     handlers.NewDeliveryHandler(ledger, replayer, auditLog),
		SubscriptionHandler: handlers.NewSubscriptionHandler(subRepo, auditLog),
		AlertHandler:        handlers.NewAlertHandler(alertRepo),
		AuthHandler:         handlers.NewAuthHandler(keyRepo, tokenSvc),
		AuditHandler:        handlers.NewAuditHandler(auditLog),
		HealthHandler:       handlers.NewHealthHandler(db, ledger),
		StatsHandler:        handlers.NewStatsHandler(ingestSvc, ledger, deduper),
		AuthMiddleware:      middleware.NewAuthMiddleware(tokenSvc),
		RateLimiter:         middleware.NewRateLimiter(cfg.RateLimit),
	}
	router := api.NewRouter(deps)

	// The replay sweeper shares the in-memory ledger, so it runs in this
	// process rather than in the worker binary.
	sweeper := workers.NewReplaySweeper(ledger, replayer)
	stop := make(chan struct{})
	defer close(stop)
	go sweeper.Run(cfg.Webhooks.RetryInterval, stop)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	zlog.Info().Str("addr", addr).Msg("alertgate starting")

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// archiveAlerts persists each accepted alert; archive failures are
// logged and never surfaced to the webhook caller.
func archiveAlerts(repo *repositories.AlertRepository) ingest.AlertHandler {
	return func(alert models.WebhookAlert) {
		if _, err := repo.Insert(alert); err != nil {
			zlog.Error().Err(err).Str("alert_id", alert.AlertID).Msg("failed to archive alert")
		}
	}
}
