package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	apiContext "alertgate/internal/api/context"
	"alertgate/internal/engine/adapters"
	"alertgate/internal/engine/ingest"
	"alertgate/internal/engine/webhooks"
)

func newIngestHandler(secret string) *IngestHandler {
	deduper := webhooks.NewDeduper(1000, time.Hour)
	svc := ingest.NewService(adapters.NewRegistry(), deduper, secret)
	return NewIngestHandler(svc)
}

func receiveRequest(source, body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/"+source, strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	params := httprouter.Params{{Key: "source", Value: source}}
	return req.WithContext(context.WithValue(req.Context(), apiContext.Params, params))
}

func TestReceiveAccepted(t *testing.T) {
	h := newIngestHandler("")

	rr := httptest.NewRecorder()
	h.Receive(rr, receiveRequest("generic", `{"alert_id":"r1","alert_name":"disk full"}`, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Status             string `json:"status"`
		AlertsProcessed    int    `json:"alerts_processed"`
		AlertsDeduplicated int    `json:"alerts_deduplicated"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "accepted" {
		t.Errorf("status = %q, want accepted", resp.Status)
	}
	if resp.AlertsProcessed != 1 || resp.AlertsDeduplicated != 0 {
		t.Errorf("processed=%d deduplicated=%d, want 1/0", resp.AlertsProcessed, resp.AlertsDeduplicated)
	}
}

func TestReceiveDuplicateCounted(t *testing.T) {
	h := newIngestHandler("")
	body := `{"alert_id":"r2","alert_name":"latency"}`

	rr := httptest.NewRecorder()
	h.Receive(rr, receiveRequest("generic", body, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Receive(rr, receiveRequest("generic", body, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("second request status = %d", rr.Code)
	}

	var resp struct {
		AlertsProcessed    int `json:"alerts_processed"`
		AlertsDeduplicated int `json:"alerts_deduplicated"`
	}
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.AlertsProcessed != 0 || resp.AlertsDeduplicated != 1 {
		t.Errorf("processed=%d deduplicated=%d, want 0/1", resp.AlertsProcessed, resp.AlertsDeduplicated)
	}
}

func TestReceiveBadSignature(t *testing.T) {
	h := newIngestHandler("topsecret")

	rr := httptest.NewRecorder()
	h.Receive(rr, receiveRequest("generic", `{"alert_id":"r3"}`, "bogus"))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "UNAUTHORIZED") {
		t.Errorf("body missing error code: %s", rr.Body.String())
	}
}

func TestReceiveValidSignature(t *testing.T) {
	h := newIngestHandler("topsecret")
	body := `{"alert_id":"r4","alert_name":"ok"}`

	rr := httptest.NewRecorder()
	h.Receive(rr, receiveRequest("generic", body, webhooks.Sign("topsecret", []byte(body))))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
}

func TestReceiveMalformedBody(t *testing.T) {
	h := newIngestHandler("")

	rr := httptest.NewRecorder()
	h.Receive(rr, receiveRequest("generic", "{{{", ""))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "INVALID_INPUT") {
		t.Errorf("body missing error code: %s", rr.Body.String())
	}
}

func TestListAdapters(t *testing.T) {
	h := newIngestHandler("")

	rr := httptest.NewRecorder()
	h.ListAdapters(rr, httptest.NewRequest(http.MethodGet, "/webhooks/adapters", nil))

	var resp struct {
		Adapters []string `json:"adapters"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}

	want := map[string]bool{"datadog": false, "pagerduty": false, "grafana": false, "opsgenie": false, "generic": false}
	for _, name := range resp.Adapters {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("adapter %q missing from listing", name)
		}
	}
}
