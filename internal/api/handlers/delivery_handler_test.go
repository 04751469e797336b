package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	_ "github.com/mattn/go-sqlite3"

	apiContext "alertgate/internal/api/context"
	"alertgate/internal/engine/webhooks"
	"alertgate/internal/platform/audit"
	"alertgate/internal/platform/database"
	"alertgate/internal/platform/models"
)

func newDeliveryFixture(t *testing.T, transport webhooks.Dispatcher) (*DeliveryHandler, *webhooks.Ledger, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	if err := database.MigrateUp(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	ledger := webhooks.NewLedger(100)
	replayer := webhooks.NewReplayer(ledger, transport, nil, 3)
	return NewDeliveryHandler(ledger, replayer, audit.NewLogger(db)), ledger, db
}

func failedDelivery(ledger *webhooks.Ledger) *models.WebhookDelivery {
	return ledger.Record(webhooks.RecordParams{
		URL:            "https://hooks.example.com/alerts",
		EventType:      "alert.triggered",
		SubscriptionID: "sub_1",
		Status:         models.DeliveryFailed,
		StatusCode:     http.StatusServiceUnavailable,
		Error:          "HTTP 503",
		Payload:        map[string]interface{}{"id": "evt_1"},
	})
}

func paramRequest(method, path, id, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	params := httprouter.Params{{Key: "delivery_id", Value: id}}
	return req.WithContext(context.WithValue(req.Context(), apiContext.Params, params))
}

func TestDeliveryGet(t *testing.T) {
	h, ledger, db := newDeliveryFixture(t, nil)
	defer db.Close()

	delivery := failedDelivery(ledger)

	rr := httptest.NewRecorder()
	h.Get(rr, paramRequest(http.MethodGet, "/api/v1/deliveries/"+delivery.ID, delivery.ID, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got models.WebhookDelivery
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if got.ID != delivery.ID || got.Status != models.DeliveryFailed {
		t.Errorf("got %+v", got)
	}
}

func TestDeliveryGetNotFound(t *testing.T) {
	h, _, db := newDeliveryFixture(t, nil)
	defer db.Close()

	rr := httptest.NewRecorder()
	h.Get(rr, paramRequest(http.MethodGet, "/api/v1/deliveries/nope", "nope", ""))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestDeliveryListFailed(t *testing.T) {
	h, ledger, db := newDeliveryFixture(t, nil)
	defer db.Close()

	failedDelivery(ledger)
	ledger.Record(webhooks.RecordParams{
		URL:    "https://ok.example.com",
		Status: models.DeliverySuccess,
	})

	rr := httptest.NewRecorder()
	h.ListFailed(rr, httptest.NewRequest(http.MethodGet, "/api/v1/deliveries", nil))

	var resp struct {
		Deliveries []*models.WebhookDelivery `json:"deliveries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Deliveries) != 1 {
		t.Fatalf("expected 1 failed delivery, got %d", len(resp.Deliveries))
	}
	if resp.Deliveries[0].Status != models.DeliveryFailed {
		t.Errorf("status = %q", resp.Deliveries[0].Status)
	}
}

func TestDeliveryReplaySimulated(t *testing.T) {
	h, ledger, db := newDeliveryFixture(t, nil)
	defer db.Close()

	delivery := failedDelivery(ledger)

	rr := httptest.NewRecorder()
	h.Replay(rr, paramRequest(http.MethodPost, "/api/v1/deliveries/"+delivery.ID+"/replay",
		delivery.ID, `{"simulate_outcome":"success"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var got models.WebhookDelivery
	json.Unmarshal(rr.Body.Bytes(), &got)
	if got.Status != models.DeliverySuccess {
		t.Errorf("status = %q, want success", got.Status)
	}
	if got.AttemptCount != 2 {
		t.Errorf("attempt_count = %d, want 2", got.AttemptCount)
	}

	// The replay shows up in the audit trail.
	entries, err := audit.NewLogger(db).List(10)
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "delivery.replay" {
		t.Errorf("audit entries = %+v", entries)
	}
}

func TestDeliveryReplayNotFound(t *testing.T) {
	h, _, db := newDeliveryFixture(t, nil)
	defer db.Close()

	rr := httptest.NewRecorder()
	h.Replay(rr, paramRequest(http.MethodPost, "/api/v1/deliveries/nope/replay", "nope", "{}"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestDeliveryReplayBatchSimulated(t *testing.T) {
	h, ledger, db := newDeliveryFixture(t, nil)
	defer db.Close()

	first := failedDelivery(ledger)
	second := failedDelivery(ledger)

	body, _ := json.Marshal(map[string]interface{}{
		"ids":              []string{first.ID, second.ID, "missing"},
		"simulate_outcome": "success",
	})

	rr := httptest.NewRecorder()
	h.ReplayBatch(rr, httptest.NewRequest(http.MethodPost, "/api/v1/replays", strings.NewReader(string(body))))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var result models.ReplayResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if result.Total != 3 || result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("total/succeeded/failed = %d/%d/%d, want 3/2/1", result.Total, result.Succeeded, result.Failed)
	}
	if result.Status != models.ReplayPartial {
		t.Errorf("status = %q, want partial", result.Status)
	}
}

func TestDeliveryReplayBatchBadBody(t *testing.T) {
	h, _, db := newDeliveryFixture(t, nil)
	defer db.Close()

	rr := httptest.NewRecorder()
	h.ReplayBatch(rr, httptest.NewRequest(http.MethodPost, "/api/v1/replays", strings.NewReader("{{")))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
