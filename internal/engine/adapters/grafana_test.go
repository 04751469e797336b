package adapters

import "testing"

func TestGrafanaSkipsResolved(t *testing.T) {
	adapter := &GrafanaAdapter{}

	payload := decode(t, `{
		"alerts": [
			{
				"status": "resolved",
				"fingerprint": "aaa",
				"labels": {"alertname": "DiskFull", "severity": "warning"}
			},
			{
				"status": "firing",
				"fingerprint": "bbb",
				"labels": {"alertname": "HighErrorRate", "severity": "critical", "service": "api", "environment": "production"},
				"annotations": {"summary": "5xx rate above 5%"}
			}
		]
	}`)

	alerts := adapter.Normalize(payload)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert (resolved skipped), got %d", len(alerts))
	}

	alert := alerts[0]
	if alert.AlertID != "bbb" {
		t.Errorf("AlertID = %q, want bbb", alert.AlertID)
	}
	if alert.AlertName != "HighErrorRate" {
		t.Errorf("AlertName = %q, want HighErrorRate", alert.AlertName)
	}
	if alert.Severity != "critical" {
		t.Errorf("Severity = %q, want critical", alert.Severity)
	}
	if alert.Service != "api" || alert.Environment != "production" {
		t.Errorf("unexpected service/environment: %+v", alert)
	}
	if alert.Description != "5xx rate above 5%" {
		t.Errorf("Description = %q, want summary annotation", alert.Description)
	}
}

func TestGrafanaAllResolved(t *testing.T) {
	adapter := &GrafanaAdapter{}

	payload := decode(t, `{"alerts": [{"status": "resolved", "labels": {"alertname": "X"}}]}`)

	if alerts := adapter.Normalize(payload); len(alerts) != 0 {
		t.Errorf("expected no alerts, got %d", len(alerts))
	}
}
