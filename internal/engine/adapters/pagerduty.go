package adapters

import (
	"alertgate/internal/platform/models"
)

// PagerDutyAdapter handles PagerDuty v3 webhooks, which arrive either as
// a batched "messages" array or as a single event envelope.
type PagerDutyAdapter struct{}

func (a *PagerDutyAdapter) Name() string {
	return "pagerduty"
}

func (a *PagerDutyAdapter) Normalize(payload map[string]interface{}) []models.WebhookAlert {
	if messages := getSlice(payload, "messages"); len(messages) > 0 {
		var alerts []models.WebhookAlert
		for _, msg := range messages {
			m, ok := msg.(map[string]interface{})
			if !ok {
				continue
			}
			alerts = append(alerts, a.normalizeEvent(m))
		}
		return alerts
	}

	return []models.WebhookAlert{a.normalizeEvent(payload)}
}

func (a *PagerDutyAdapter) normalizeEvent(envelope map[string]interface{}) models.WebhookAlert {
	data := map[string]interface{}{}
	if event := getMap(envelope, "event"); event != nil {
		if d := getMap(event, "data"); d != nil {
			data = d
		}
	}

	alert := models.WebhookAlert{
		AlertID:     getString(data, "id"),
		AlertName:   getString(data, "title"),
		Severity:    getString(data, "urgency"),
		Description: getString(data, "description"),
		Source:      a.Name(),
	}

	if service := getMap(data, "service"); service != nil {
		alert.Service = getString(service, "name")
	}

	return alert
}
