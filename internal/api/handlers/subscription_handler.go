package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	apiContext "alertgate/internal/api/context"
	"alertgate/internal/pkg/errors"
	"alertgate/internal/platform/audit"
	"alertgate/internal/platform/models"
	"alertgate/internal/platform/repositories"
)

type SubscriptionHandler struct {
	repo  *repositories.SubscriptionRepository
	audit *audit.Logger
}

func NewSubscriptionHandler(repo *repositories.SubscriptionRepository, auditLog *audit.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{repo: repo, audit: auditLog}
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL        string   `json:"url"`
		EventTypes []string `json:"event_types"`
		Secret     string   `json:"secret"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.URL == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "url is required", nil)
		return
	}
	if len(req.EventTypes) == 0 {
		req.EventTypes = []string{"alert.triggered"}
	}

	sub := &models.Subscription{
		URL:        req.URL,
		EventTypes: req.EventTypes,
		Secret:     req.Secret,
	}
	if sub.Secret == "" {
		sub.Secret = "whsec_" + uuid.New().String()
	}

	if err := h.repo.Create(sub); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create subscription", nil)
		return
	}

	h.audit.Log(r.Context(), r, "subscription.create", "subscription", sub.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sub)
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.repo.List()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list subscriptions", nil)
		return
	}
	if subs == nil {
		subs = []*models.Subscription{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(subs)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("subscription_id")

	sub, err := h.repo.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Subscription not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("subscription_id")

	var req models.Subscription
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	sub, err := h.repo.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Subscription not found", nil)
		return
	}

	if req.URL != "" {
		sub.URL = req.URL
	}
	if len(req.EventTypes) > 0 {
		sub.EventTypes = req.EventTypes
	}
	if req.Secret != "" {
		sub.Secret = req.Secret
	}
	if req.Status != "" {
		sub.Status = req.Status
	}

	if err := h.repo.Update(sub); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update subscription", nil)
		return
	}

	h.audit.Log(r.Context(), r, "subscription.update", "subscription", sub.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("subscription_id")

	if err := h.repo.Delete(id); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete subscription", nil)
		return
	}

	h.audit.Log(r.Context(), r, "subscription.delete", "subscription", id, nil)

	w.WriteHeader(http.StatusOK)
}
