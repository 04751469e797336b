package webhooks

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"alertgate/internal/platform/models"
)

// Ledger is the bounded in-memory store of outbound delivery attempts.
// Records are mutated in place on replay and removed only in bulk when
// capacity is reached: at maxDeliveries the oldest half is pruned before
// the next insert. Eviction is a capacity release valve, not an LRU.
type Ledger struct {
	mu            sync.Mutex
	maxDeliveries int
	byID          map[string]*models.WebhookDelivery
	order         []string // insertion order, oldest first
}

const DefaultMaxDeliveries = 10000

func NewLedger(maxDeliveries int) *Ledger {
	if maxDeliveries <= 0 {
		maxDeliveries = DefaultMaxDeliveries
	}
	return &Ledger{
		maxDeliveries: maxDeliveries,
		byID:          make(map[string]*models.WebhookDelivery),
	}
}

// RecordParams carries everything known about a dispatch outcome at
// recording time.
type RecordParams struct {
	URL            string
	EventType      string
	SubscriptionID string
	Status         string
	StatusCode     int
	ResponseBody   string
	Error          string
	Payload        map[string]interface{}
	Metadata       map[string]interface{}
}

// Record inserts a new delivery record. A terminal status means one
// attempt already happened; pending means none has.
func (l *Ledger) Record(p RecordParams) *models.WebhookDelivery {
	now := time.Now()

	delivery := &models.WebhookDelivery{
		ID:             newDeliveryID(),
		URL:            p.URL,
		SubscriptionID: p.SubscriptionID,
		EventType:      p.EventType,
		Payload:        p.Payload,
		Status:         p.Status,
		StatusCode:     p.StatusCode,
		ResponseBody:   p.ResponseBody,
		Error:          p.Error,
		CreatedAt:      now,
		Metadata:       p.Metadata,
	}
	if p.Status == models.DeliverySuccess || p.Status == models.DeliveryFailed {
		delivery.AttemptCount = 1
		attemptedAt := now
		delivery.LastAttemptAt = &attemptedAt
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.order) >= l.maxDeliveries {
		l.pruneLocked(l.maxDeliveries / 2)
	}

	l.byID[delivery.ID] = delivery
	l.order = append(l.order, delivery.ID)

	copied := *delivery
	return &copied
}

// Get returns a snapshot of the delivery, or nil if unknown.
func (l *Ledger) Get(id string) *models.WebhookDelivery {
	l.mu.Lock()
	defer l.mu.Unlock()

	delivery, ok := l.byID[id]
	if !ok {
		return nil
	}
	copied := *delivery
	return &copied
}

// Failed returns failed deliveries, most recent first, optionally
// filtered by subscription, capped at limit.
func (l *Ledger) Failed(subscriptionID string, limit int) []*models.WebhookDelivery {
	if limit <= 0 {
		limit = 100
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*models.WebhookDelivery
	for i := len(l.order) - 1; i >= 0 && len(out) < limit; i-- {
		delivery := l.byID[l.order[i]]
		if delivery.Status != models.DeliveryFailed {
			continue
		}
		if subscriptionID != "" && delivery.SubscriptionID != subscriptionID {
			continue
		}
		copied := *delivery
		out = append(out, &copied)
	}
	return out
}

// Len returns the number of resident delivery records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

// mutate applies fn to the delivery under the ledger lock and returns a
// snapshot of the result, or nil if the id is unknown.
func (l *Ledger) mutate(id string, fn func(*models.WebhookDelivery)) *models.WebhookDelivery {
	l.mu.Lock()
	defer l.mu.Unlock()

	delivery, ok := l.byID[id]
	if !ok {
		return nil
	}
	fn(delivery)
	copied := *delivery
	return &copied
}

// pruneLocked drops the oldest records until at most keep remain. Caller
// holds the lock.
func (l *Ledger) pruneLocked(keep int) {
	if len(l.order) <= keep {
		return
	}
	drop := len(l.order) - keep
	for _, id := range l.order[:drop] {
		delete(l.byID, id)
	}
	l.order = append(l.order[:0], l.order[drop:]...)
}

func newDeliveryID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
