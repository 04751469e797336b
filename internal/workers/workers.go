package workers

import (
	"time"

	"github.com/rs/zerolog/log"

	"alertgate/internal/engine/webhooks"
	"alertgate/internal/platform/repositories"
)

const sweepBatchSize = 100

// ReplaySweeper periodically re-attempts failed deliveries that are
// still under the retry ceiling. It runs inside the server process: the
// delivery ledger is memory-resident and not visible across processes.
type ReplaySweeper struct {
	ledger   *webhooks.Ledger
	replayer *webhooks.Replayer
}

func NewReplaySweeper(ledger *webhooks.Ledger, replayer *webhooks.Replayer) *ReplaySweeper {
	return &ReplaySweeper{ledger: ledger, replayer: replayer}
}

// Run sweeps on every tick until stop is closed.
func (s *ReplaySweeper) Run(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-stop:
			return
		}
	}
}

// Sweep replays the most recent failed deliveries. The replayer refuses
// deliveries at the retry ceiling, so repeated sweeps of the same stuck
// delivery record nothing.
func (s *ReplaySweeper) Sweep() {
	failed := s.ledger.Failed("", sweepBatchSize)
	if len(failed) == 0 {
		return
	}

	var replayed, recovered int
	for _, delivery := range failed {
		result := s.replayer.Replay(delivery.ID)
		if result == nil {
			continue
		}
		if result.AttemptCount > delivery.AttemptCount {
			replayed++
		}
		if result.Status == "success" {
			recovered++
		}
	}

	log.Info().Int("failed", len(failed)).Int("replayed", replayed).
		Int("recovered", recovered).Msg("replay sweep finished")
}

const archiveRetention = 30 * 24 * time.Hour

// PruneArchive deletes archived alerts older than the retention window.
func PruneArchive(repo *repositories.AlertRepository) error {
	cutoff := time.Now().Add(-archiveRetention).Unix()
	removed, err := repo.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("pruned alert archive")
	}
	return nil
}
