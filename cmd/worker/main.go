package main

import (
	"flag"
	"log"
	"time"

	"alertgate/internal/pkg/logger"
	"alertgate/internal/platform/config"
	"alertgate/internal/platform/database"
	"alertgate/internal/platform/repositories"
	"alertgate/internal/workers"
)

// The worker binary owns DB-side maintenance. Ledger replay sweeping
// lives in the server process because the ledger is memory-resident.
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

	alertRepo := repositories.NewAlertRepository(db)

	log.Println("Starting alertgate background workers...")

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := workers.PruneArchive(alertRepo); err != nil {
			log.Printf("Error pruning alert archive: %v", err)
		}
	}
}
