package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"alertgate/internal/engine/webhooks"
)

type HealthHandler struct {
	db     *sql.DB
	ledger *webhooks.Ledger
}

func NewHealthHandler(db *sql.DB, ledger *webhooks.Ledger) *HealthHandler {
	return &HealthHandler{db: db, ledger: ledger}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.db.Ping(); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
	} else {
		checks["database"] = "healthy"
	}
	checks["ledger"] = "healthy"

	status := "healthy"
	for _, check := range checks {
		if len(check) >= 9 && check[:9] == "unhealthy" {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
