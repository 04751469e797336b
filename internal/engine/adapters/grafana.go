package adapters

import (
	"alertgate/internal/platform/models"
)

// GrafanaAdapter handles Grafana unified-alerting webhooks. Only firing
// entries become canonical alerts; resolved entries are skipped.
type GrafanaAdapter struct{}

func (a *GrafanaAdapter) Name() string {
	return "grafana"
}

func (a *GrafanaAdapter) Normalize(payload map[string]interface{}) []models.WebhookAlert {
	var alerts []models.WebhookAlert

	for _, entry := range getSlice(payload, "alerts") {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if getString(m, "status") != "firing" {
			continue
		}

		labels := getMap(m, "labels")
		annotations := getMap(m, "annotations")

		alert := models.WebhookAlert{
			AlertID: getString(m, "fingerprint"),
			Source:  a.Name(),
		}
		if labels != nil {
			alert.AlertName = getString(labels, "alertname")
			alert.Severity = getString(labels, "severity")
			alert.Service = getString(labels, "service")
			alert.Environment = getString(labels, "environment")
		}
		if annotations != nil {
			alert.Description = getString(annotations, "summary", "description")
		}

		alerts = append(alerts, alert)
	}

	return alerts
}
