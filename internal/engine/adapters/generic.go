package adapters

import (
	"alertgate/internal/platform/models"
)

// GenericAdapter is the fallback for unrecognized sources. It accepts
// either a top-level "alerts" array or a single flat alert object.
type GenericAdapter struct{}

func (a *GenericAdapter) Name() string {
	return "generic"
}

func (a *GenericAdapter) Normalize(payload map[string]interface{}) []models.WebhookAlert {
	if entries := getSlice(payload, "alerts"); entries != nil {
		var alerts []models.WebhookAlert
		for _, entry := range entries {
			m, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			alerts = append(alerts, models.WebhookAlert{
				AlertID:     getString(m, "id", "alert_id"),
				AlertName:   getString(m, "name", "alert_name"),
				Severity:    getString(m, "severity"),
				Service:     getString(m, "service"),
				Environment: getString(m, "environment"),
				Source:      a.Name(),
			})
		}
		return alerts
	}

	return []models.WebhookAlert{{
		AlertID:     getString(payload, "alert_id", "id"),
		AlertName:   getString(payload, "alert_name", "name"),
		Severity:    getString(payload, "severity"),
		Service:     getString(payload, "service"),
		Environment: getString(payload, "environment"),
		Source:      a.Name(),
	}}
}
