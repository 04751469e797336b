package webhooks

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"alertgate/internal/platform/models"
)

// Dispatcher is the outbound transport a replay goes through. Headers
// carry the delivery signature and event identity alongside the body.
type Dispatcher interface {
	Dispatch(url string, payload []byte, headers map[string]string) (statusCode int, body string, err error)
}

// DispatchFunc adapts a plain function to the Dispatcher interface.
type DispatchFunc func(url string, payload []byte, headers map[string]string) (int, string, error)

func (f DispatchFunc) Dispatch(url string, payload []byte, headers map[string]string) (int, string, error) {
	return f(url, payload, headers)
}

// SubscriptionSecrets resolves the signing secret registered for a
// subscription, so a replayed delivery carries the same signature the
// original dispatch did.
type SubscriptionSecrets interface {
	SigningSecret(subscriptionID string) (string, error)
}

const DefaultMaxRetries = 3

// Replayer re-attempts ledger deliveries, singly or in batch, with a
// hard retry ceiling.
type Replayer struct {
	ledger     *Ledger
	transport  Dispatcher
	secrets    SubscriptionSecrets
	maxRetries int
}

// NewReplayer builds a replayer. secrets may be nil, in which case
// replays are dispatched unsigned (deliveries without a subscription).
func NewReplayer(ledger *Ledger, transport Dispatcher, secrets SubscriptionSecrets, maxRetries int) *Replayer {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Replayer{
		ledger:     ledger,
		transport:  transport,
		secrets:    secrets,
		maxRetries: maxRetries,
	}
}

// Replay re-attempts one delivery through the configured transport.
// Unknown ids return nil. A delivery at the retry ceiling, or one with
// a replay already in flight, is returned without a new attempt being
// recorded; that unchanged result is how callers distinguish "refused
// to try" from "tried and failed".
func (r *Replayer) Replay(id string) *models.WebhookDelivery {
	return r.ReplayVia(id, r.transport)
}

// ReplayVia is Replay with an explicit transport. Ops tooling uses it to
// dry-run a replay against a stubbed outcome.
func (r *Replayer) ReplayVia(id string, transport Dispatcher) *models.WebhookDelivery {
	refused := false
	reserved := r.ledger.mutate(id, func(d *models.WebhookDelivery) {
		// The attempt is reserved here, inside one critical section, so
		// a concurrent replay of the same delivery can neither slip past
		// the ceiling nor double-dispatch.
		if d.AttemptCount >= r.maxRetries || d.Status == models.DeliveryReplaying {
			refused = true
			return
		}
		d.AttemptCount++
		now := time.Now()
		d.LastAttemptAt = &now
		d.Status = models.DeliveryReplaying
	})
	if reserved == nil || refused {
		return reserved
	}

	payload, _ := json.Marshal(reserved.Payload)
	statusCode, body, err := transport.Dispatch(reserved.URL, payload, r.replayHeaders(reserved, payload))

	result := r.ledger.mutate(id, func(d *models.WebhookDelivery) {
		if err != nil {
			d.Status = models.DeliveryFailed
			d.StatusCode = 500
			d.Error = "dispatch failed: " + err.Error()
			return
		}
		d.StatusCode = statusCode
		d.ResponseBody = body
		if statusCode >= 400 {
			d.Status = models.DeliveryFailed
			d.Error = "endpoint returned HTTP " + strconv.Itoa(statusCode)
		} else {
			d.Status = models.DeliverySuccess
			d.Error = ""
		}
	})

	if result != nil && result.Status == models.DeliveryFailed {
		log.Warn().Str("delivery_id", id).Int("attempt", result.AttemptCount).
			Str("error", result.Error).Msg("delivery replay failed")
	}
	return result
}

// replayHeaders rebuilds the headers the original fan-out dispatch
// carried: event identity plus a signature under the subscription's
// secret, computed over the replayed body.
func (r *Replayer) replayHeaders(d *models.WebhookDelivery, payload []byte) map[string]string {
	headers := map[string]string{}
	if d.EventType != "" {
		headers["X-Alertgate-Event"] = d.EventType
	}
	if eventID, ok := d.Metadata["event_id"].(string); ok && eventID != "" {
		headers["X-Alertgate-Delivery"] = eventID
	}
	if r.secrets != nil && d.SubscriptionID != "" {
		secret, err := r.secrets.SigningSecret(d.SubscriptionID)
		if err != nil {
			log.Warn().Err(err).Str("subscription_id", d.SubscriptionID).
				Msg("failed to resolve signing secret for replay")
		} else if secret != "" {
			headers["X-Alertgate-Signature"] = Sign(secret, payload)
		}
	}
	return headers
}

// ReplayBatch replays each id in order. Ids missing from the ledger count
// as failures without touching the ledger; one bad id never aborts the
// rest of the batch.
func (r *Replayer) ReplayBatch(ids []string) *models.ReplayResult {
	return r.ReplayBatchVia(ids, r.transport)
}

// ReplayBatchVia is ReplayBatch with an explicit transport.
func (r *Replayer) ReplayBatchVia(ids []string, transport Dispatcher) *models.ReplayResult {
	result := &models.ReplayResult{
		ID:        "rpl_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12],
		Total:     len(ids),
		Results:   make([]models.ReplayItem, 0, len(ids)),
		StartedAt: time.Now(),
	}

	for _, id := range ids {
		delivery := r.ReplayVia(id, transport)
		if delivery == nil {
			result.Failed++
			result.Results = append(result.Results, models.ReplayItem{DeliveryID: id, Status: "not_found"})
			continue
		}
		if delivery.Status == models.DeliverySuccess {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, models.ReplayItem{DeliveryID: id, Status: delivery.Status})
	}

	switch {
	case result.Failed == 0:
		result.Status = models.ReplayCompleted
	case result.Succeeded == 0 && result.Total > 0:
		result.Status = models.ReplayFailed
	default:
		result.Status = models.ReplayPartial
	}

	completedAt := time.Now()
	result.CompletedAt = &completedAt
	return result
}
