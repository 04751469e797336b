package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	apiContext "alertgate/internal/api/context"
	"alertgate/internal/engine/webhooks"
	"alertgate/internal/pkg/errors"
	"alertgate/internal/platform/audit"
	"alertgate/internal/platform/models"
)

type DeliveryHandler struct {
	ledger   *webhooks.Ledger
	replayer *webhooks.Replayer
	audit    *audit.Logger
}

func NewDeliveryHandler(ledger *webhooks.Ledger, replayer *webhooks.Replayer, auditLog *audit.Logger) *DeliveryHandler {
	return &DeliveryHandler{ledger: ledger, replayer: replayer, audit: auditLog}
}

// Get handles GET /api/v1/deliveries/:delivery_id.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("delivery_id")

	delivery := h.ledger.Get(id)
	if delivery == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Delivery not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(delivery)
}

// ListFailed handles GET /api/v1/deliveries, which lists failed
// deliveries most recent first.
func (h *DeliveryHandler) ListFailed(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	subscriptionID := r.URL.Query().Get("subscription_id")

	deliveries := h.ledger.Failed(subscriptionID, limit)
	if deliveries == nil {
		deliveries = []*models.WebhookDelivery{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Deliveries []*models.WebhookDelivery `json:"deliveries"`
	}{Deliveries: deliveries})
}

// replayRequest optionally forces a simulated outcome instead of a real
// dispatch, for ops dry-runs.
type replayRequest struct {
	SimulateOutcome string `json:"simulate_outcome,omitempty"` // "", "success", "failure"
}

// Replay handles POST /api/v1/deliveries/:delivery_id/replay.
func (h *DeliveryHandler) Replay(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("delivery_id")

	var req replayRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	delivery := h.replayDelivery(id, req.SimulateOutcome)
	if delivery == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Delivery not found", nil)
		return
	}

	h.audit.Log(r.Context(), r, "delivery.replay", "delivery", id, map[string]interface{}{
		"status":        delivery.Status,
		"attempt_count": delivery.AttemptCount,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(delivery)
}

// ReplayBatch handles POST /api/v1/replays.
func (h *DeliveryHandler) ReplayBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs             []string `json:"ids"`
		SimulateOutcome string   `json:"simulate_outcome,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	var result *models.ReplayResult
	if req.SimulateOutcome != "" {
		result = h.replayBatchSimulated(req.IDs, req.SimulateOutcome)
	} else {
		result = h.replayer.ReplayBatch(req.IDs)
	}

	h.audit.Log(r.Context(), r, "delivery.replay_batch", "delivery", result.ID, map[string]interface{}{
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *DeliveryHandler) replayDelivery(id, simulate string) *models.WebhookDelivery {
	if simulate == "" {
		return h.replayer.Replay(id)
	}
	return h.replayer.ReplayVia(id, simulatedTransport(simulate))
}

func (h *DeliveryHandler) replayBatchSimulated(ids []string, simulate string) *models.ReplayResult {
	return h.replayer.ReplayBatchVia(ids, simulatedTransport(simulate))
}

func simulatedTransport(outcome string) webhooks.Dispatcher {
	return webhooks.DispatchFunc(func(url string, payload []byte, headers map[string]string) (int, string, error) {
		if outcome == "success" {
			return http.StatusOK, "", nil
		}
		return http.StatusInternalServerError, "", nil
	})
}
