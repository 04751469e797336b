package adapters

import (
	"strings"

	"alertgate/internal/platform/models"
)

// OpsgenieAdapter handles Opsgenie action webhooks. Close actions are not
// alertable events and produce nothing.
type OpsgenieAdapter struct{}

func (a *OpsgenieAdapter) Name() string {
	return "opsgenie"
}

// opsgenieSeverities maps Opsgenie's P-scale priorities onto the
// normalized vocabulary.
var opsgenieSeverities = map[string]string{
	"P1": "critical",
	"P2": "high",
	"P3": "warning",
	"P4": "low",
	"P5": "low",
}

func (a *OpsgenieAdapter) Normalize(payload map[string]interface{}) []models.WebhookAlert {
	if getString(payload, "action") == "Close" {
		return nil
	}

	data := getMap(payload, "alert")
	if data == nil {
		data = map[string]interface{}{}
	}

	alert := models.WebhookAlert{
		AlertID:     getString(data, "alertId"),
		AlertName:   getString(data, "message"),
		Description: getString(data, "description"),
		Source:      a.Name(),
	}

	priority := getString(data, "priority")
	if severity, ok := opsgenieSeverities[priority]; ok {
		alert.Severity = severity
	} else {
		alert.Severity = priority
	}

	for _, tag := range getSlice(data, "tags") {
		s, ok := tag.(string)
		if !ok {
			continue
		}
		if service, ok := strings.CutPrefix(s, "service:"); ok {
			alert.Service = service
		} else if env, ok := strings.CutPrefix(s, "env:"); ok {
			alert.Environment = env
		}
	}

	return []models.WebhookAlert{alert}
}
