package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"alertgate/internal/pkg/errors"
	"alertgate/internal/platform/repositories"
)

type AlertHandler struct {
	repo *repositories.AlertRepository
}

func NewAlertHandler(repo *repositories.AlertRepository) *AlertHandler {
	return &AlertHandler{repo: repo}
}

// List handles GET /api/v1/alerts.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	source := r.URL.Query().Get("source")

	alerts, err := h.repo.List(source, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list alerts", nil)
		return
	}
	if alerts == nil {
		alerts = []*repositories.ArchivedAlert{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Alerts []*repositories.ArchivedAlert `json:"alerts"`
	}{Alerts: alerts})
}
