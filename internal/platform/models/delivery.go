package models

import "time"

// Delivery status values.
const (
	DeliveryPending   = "pending"
	DeliverySuccess   = "success"
	DeliveryFailed    = "failed"
	DeliveryReplaying = "replaying"
)

// WebhookDelivery records one outbound webhook dispatch and its outcome.
// Records are mutated in place on replay and only ever removed in bulk
// by the ledger's capacity policy.
type WebhookDelivery struct {
	ID             string                 `json:"id"`
	URL            string                 `json:"url"`
	SubscriptionID string                 `json:"subscription_id,omitempty"`
	EventType      string                 `json:"event_type"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	Status         string                 `json:"status"`
	StatusCode     int                    `json:"status_code"`
	ResponseBody   string                 `json:"response_body,omitempty"`
	Error          string                 `json:"error,omitempty"`
	AttemptCount   int                    `json:"attempt_count"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAttemptAt  *time.Time             `json:"last_attempt_at,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Batch replay status values.
const (
	ReplayCompleted = "completed"
	ReplayPartial   = "partial"
	ReplayFailed    = "failed"
)

// ReplayItem is the per-delivery outcome inside a batch replay.
type ReplayItem struct {
	DeliveryID string `json:"delivery_id"`
	Status     string `json:"status"`
}

// ReplayResult is the aggregate outcome of one batch replay call. It is
// returned to the caller and never persisted.
type ReplayResult struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	Total       int          `json:"total"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	Results     []ReplayItem `json:"results"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
