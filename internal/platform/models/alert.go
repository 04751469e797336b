package models

// WebhookAlert is the canonical, vendor-independent representation of an
// inbound monitoring notification. Adapters produce it; it is never
// mutated after that.
type WebhookAlert struct {
	AlertID     string `json:"alert_id"`
	AlertName   string `json:"alert_name"`
	Severity    string `json:"severity"`
	Source      string `json:"source"`
	Service     string `json:"service,omitempty"`
	Environment string `json:"environment,omitempty"`
	Description string `json:"description,omitempty"`
}
