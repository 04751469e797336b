package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "alertgate/internal/api/context"
	"alertgate/internal/engine/ingest"
	"alertgate/internal/pkg/errors"
)

// maxInboundBody caps inbound webhook bodies at 1 MiB.
const maxInboundBody = 1 << 20

// SignatureHeader carries the vendor's HMAC-SHA256 hex digest of the
// request body.
const SignatureHeader = "X-Webhook-Signature"

type IngestHandler struct {
	service *ingest.Service
}

func NewIngestHandler(service *ingest.Service) *IngestHandler {
	return &IngestHandler{service: service}
}

// Receive handles POST /webhooks/:source.
func (h *IngestHandler) Receive(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	source := params.ByName("source")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInboundBody))
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Failed to read request body", nil)
		return
	}

	result, err := h.service.Process(source, body, r.Header.Get(SignatureHeader))
	if err == ingest.ErrUnauthorized {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Signature verification failed", nil)
		return
	}
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Request body is not valid JSON", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Status             string `json:"status"`
		AlertsProcessed    int    `json:"alerts_processed"`
		AlertsDeduplicated int    `json:"alerts_deduplicated"`
	}{
		Status:             "accepted",
		AlertsProcessed:    result.Processed,
		AlertsDeduplicated: result.Deduplicated,
	})
}

// ListAdapters handles GET /webhooks/adapters.
func (h *IngestHandler) ListAdapters(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Adapters []string `json:"adapters"`
	}{
		Adapters: h.service.Adapters(),
	})
}
