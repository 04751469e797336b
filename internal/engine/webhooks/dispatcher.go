package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"alertgate/internal/platform/models"
	"alertgate/internal/platform/repositories"
)

// responseBodyLimit caps how much of a subscriber's response is kept on
// the delivery record.
const responseBodyLimit = 4 << 10

// HTTPDispatcher posts JSON payloads to subscriber endpoints. It is the
// production Dispatcher transport; tests substitute a DispatchFunc.
type HTTPDispatcher struct {
	client *http.Client
	secret string
}

func NewHTTPDispatcher(timeout time.Duration, secret string) *HTTPDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDispatcher{
		client: &http.Client{Timeout: timeout},
		secret: secret,
	}
}

func (d *HTTPDispatcher) Dispatch(url string, payload []byte, headers map[string]string) (int, string, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return 0, "", err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if d.secret != "" && req.Header.Get("X-Alertgate-Signature") == "" {
		req.Header.Set("X-Alertgate-Signature", Sign(d.secret, payload))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	return resp.StatusCode, string(body), nil
}

// Fanout publishes gateway events to matching subscriptions and records
// every outcome in the delivery ledger.
type Fanout struct {
	subs   *repositories.SubscriptionRepository
	ledger *Ledger
	client *http.Client
}

func NewFanout(subs *repositories.SubscriptionRepository, ledger *Ledger, timeout time.Duration) *Fanout {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fanout{
		subs:   subs,
		ledger: ledger,
		client: &http.Client{Timeout: timeout},
	}
}

// Event is the envelope sent to subscribers.
type Event struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Publish delivers eventType to every active subscription listening for
// it. Deliveries run in their own goroutines; publishing never blocks
// the caller on subscriber latency.
func (f *Fanout) Publish(eventType string, data interface{}) {
	subs, err := f.subs.GetByEvent(eventType)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to load subscriptions")
		return
	}
	if len(subs) == 0 {
		return
	}

	event := &Event{
		ID:        "evt_" + uuid.New().String(),
		Event:     eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}

	for _, sub := range subs {
		go f.deliver(sub, event)
	}
}

func (f *Fanout) deliver(sub *models.Subscription, event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("failed to marshal event")
		return
	}

	// Payload is kept on the record so failed deliveries can be replayed
	// with the original body.
	recordPayload := map[string]interface{}{
		"id":        event.ID,
		"event":     event.Event,
		"timestamp": event.Timestamp,
		"data":      event.Data,
	}

	req, err := http.NewRequest(http.MethodPost, sub.URL, bytes.NewBuffer(payload))
	if err != nil {
		f.record(sub, event, recordPayload, 0, "", err)
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Alertgate-Signature", Sign(sub.Secret, payload))
	req.Header.Set("X-Alertgate-Event", event.Event)
	req.Header.Set("X-Alertgate-Delivery", event.ID)

	resp, err := f.client.Do(req)
	if err != nil {
		f.record(sub, event, recordPayload, 0, "", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	f.record(sub, event, recordPayload, resp.StatusCode, string(body), nil)
}

func (f *Fanout) record(sub *models.Subscription, event *Event, payload map[string]interface{}, statusCode int, body string, dispatchErr error) {
	status := models.DeliverySuccess
	errStr := ""

	if dispatchErr != nil {
		status = models.DeliveryFailed
		errStr = dispatchErr.Error()
	} else if statusCode >= 400 {
		status = models.DeliveryFailed
		errStr = fmt.Sprintf("HTTP %d", statusCode)
	}

	f.ledger.Record(RecordParams{
		URL:            sub.URL,
		EventType:      event.Event,
		SubscriptionID: sub.ID,
		Status:         status,
		StatusCode:     statusCode,
		ResponseBody:   body,
		Error:          errStr,
		Payload:        payload,
		Metadata:       map[string]interface{}{"event_id": event.ID},
	})

	if status == models.DeliveryFailed {
		f.subs.RecordFailure(sub.ID, errStr)
		log.Warn().Str("subscription_id", sub.ID).Str("event", event.Event).
			Str("error", errStr).Msg("webhook delivery failed")
	} else {
		f.subs.UpdateLastTriggered(sub.ID, time.Now().Unix())
	}
}
