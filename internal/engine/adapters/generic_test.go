package adapters

import "testing"

func TestGenericNormalize(t *testing.T) {
	adapter := &GenericAdapter{}

	t.Run("alerts array", func(t *testing.T) {
		payload := decode(t, `{
			"alerts": [
				{"id": "g-1", "name": "First"},
				{"alert_id": "g-2", "alert_name": "Second", "severity": "low"}
			]
		}`)

		alerts := adapter.Normalize(payload)
		if len(alerts) != 2 {
			t.Fatalf("expected 2 alerts, got %d", len(alerts))
		}
		if alerts[0].AlertID != "g-1" || alerts[0].AlertName != "First" {
			t.Errorf("unexpected first alert: %+v", alerts[0])
		}
		if alerts[1].AlertID != "g-2" || alerts[1].Severity != "low" {
			t.Errorf("unexpected second alert: %+v", alerts[1])
		}
	})

	t.Run("flat payload", func(t *testing.T) {
		payload := decode(t, `{"alert_id": "g-3", "name": "Flat", "severity": "high", "service": "db"}`)

		alerts := adapter.Normalize(payload)
		if len(alerts) != 1 {
			t.Fatalf("expected 1 alert, got %d", len(alerts))
		}
		if alerts[0].AlertID != "g-3" || alerts[0].AlertName != "Flat" || alerts[0].Service != "db" {
			t.Errorf("unexpected alert: %+v", alerts[0])
		}
		if alerts[0].Source != "generic" {
			t.Errorf("Source = %q, want generic", alerts[0].Source)
		}
	})
}
