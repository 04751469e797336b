package adapters

import (
	"strings"

	"alertgate/internal/platform/models"
)

// DatadogAdapter handles Datadog event webhooks. Datadog sends tags
// either as a comma-joined string or as an array of "key:value" tokens.
type DatadogAdapter struct{}

func (a *DatadogAdapter) Name() string {
	return "datadog"
}

func (a *DatadogAdapter) Normalize(payload map[string]interface{}) []models.WebhookAlert {
	alert := models.WebhookAlert{
		AlertID:     getString(payload, "id", "event_id"),
		AlertName:   getString(payload, "title", "event_title"),
		Description: getString(payload, "body", "event_msg"),
		Severity:    getString(payload, "priority"),
		Source:      a.Name(),
	}

	for _, tag := range datadogTags(payload) {
		if service, ok := strings.CutPrefix(tag, "service:"); ok {
			alert.Service = service
		} else if env, ok := strings.CutPrefix(tag, "env:"); ok {
			alert.Environment = env
		}
	}

	return []models.WebhookAlert{alert}
}

func datadogTags(payload map[string]interface{}) []string {
	switch tags := payload["tags"].(type) {
	case string:
		var out []string
		for _, tag := range strings.Split(tags, ",") {
			out = append(out, strings.TrimSpace(tag))
		}
		return out
	case []interface{}:
		var out []string
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
