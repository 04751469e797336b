package handlers

import (
	"fmt"
	"net/http"

	"alertgate/internal/engine/ingest"
	"alertgate/internal/engine/webhooks"
)

// StatsHandler exposes gateway gauges as a plain-text export.
type StatsHandler struct {
	service *ingest.Service
	ledger  *webhooks.Ledger
	deduper *webhooks.Deduper
}

func NewStatsHandler(service *ingest.Service, ledger *webhooks.Ledger, deduper *webhooks.Deduper) *StatsHandler {
	return &StatsHandler{service: service, ledger: ledger, deduper: deduper}
}

func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "# HELP alertgate_up Is the gateway up\n")
	fmt.Fprintf(w, "# TYPE alertgate_up gauge\n")
	fmt.Fprintf(w, "alertgate_up 1\n")
	fmt.Fprintf(w, "# HELP alertgate_ledger_deliveries Resident delivery records\n")
	fmt.Fprintf(w, "# TYPE alertgate_ledger_deliveries gauge\n")
	fmt.Fprintf(w, "alertgate_ledger_deliveries %d\n", h.ledger.Len())
	fmt.Fprintf(w, "# HELP alertgate_dedup_fingerprints Resident dedup fingerprints\n")
	fmt.Fprintf(w, "# TYPE alertgate_dedup_fingerprints gauge\n")
	fmt.Fprintf(w, "alertgate_dedup_fingerprints %d\n", h.deduper.Len())
	fmt.Fprintf(w, "# HELP alertgate_adapters Registered adapters\n")
	fmt.Fprintf(w, "# TYPE alertgate_adapters gauge\n")
	fmt.Fprintf(w, "alertgate_adapters %d\n", len(h.service.Adapters()))
}
