package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"alertgate/internal/platform/models"
)

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *models.Subscription) error {
	sub.ID = "sub_" + uuid.New().String()
	sub.CreatedAt = time.Now().Unix()
	sub.UpdatedAt = time.Now().Unix()
	sub.Status = "active"

	eventsJSON, err := json.Marshal(sub.EventTypes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subscriptions (id, url, event_types, secret, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, sub.ID, sub.URL, string(eventsJSON), sub.Secret, sub.Status, sub.CreatedAt, sub.UpdatedAt)
	return err
}

func (r *SubscriptionRepository) GetByID(id string) (*models.Subscription, error) {
	query := `SELECT id, url, event_types, secret, status, retry_count, last_triggered_at, last_error, created_at, updated_at FROM subscriptions WHERE id = ?`
	row := r.db.QueryRow(query, id)
	return scanSubscription(row.Scan)
}

func (r *SubscriptionRepository) List() ([]*models.Subscription, error) {
	query := `SELECT id, url, event_types, secret, status, retry_count, last_triggered_at, last_error, created_at, updated_at FROM subscriptions ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SubscriptionRepository) Update(sub *models.Subscription) error {
	eventsJSON, err := json.Marshal(sub.EventTypes)
	if err != nil {
		return err
	}
	sub.UpdatedAt = time.Now().Unix()

	query := `
		UPDATE subscriptions
		SET url = ?, event_types = ?, secret = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query, sub.URL, string(eventsJSON), sub.Secret, sub.Status, sub.UpdatedAt, sub.ID)
	return err
}

func (r *SubscriptionRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM subscriptions WHERE id = ?`, id)
	return err
}

// GetByEvent returns all active subscriptions that listen for the given
// event type. Event lists are small per deployment, so filtering happens
// in the application rather than with JSON operators.
func (r *SubscriptionRepository) GetByEvent(eventType string) ([]*models.Subscription, error) {
	query := `SELECT id, url, event_types, secret, status, retry_count, last_triggered_at, last_error, created_at, updated_at FROM subscriptions WHERE status = 'active'`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matched []*models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows.Scan)
		if err != nil {
			continue
		}
		for _, e := range s.EventTypes {
			if e == eventType || e == "*" {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched, rows.Err()
}

// SigningSecret returns the subscription's webhook secret. Replays use
// it to sign re-dispatched deliveries the way the original did.
func (r *SubscriptionRepository) SigningSecret(id string) (string, error) {
	var secret string
	err := r.db.QueryRow(`SELECT secret FROM subscriptions WHERE id = ?`, id).Scan(&secret)
	return secret, err
}

func (r *SubscriptionRepository) UpdateLastTriggered(id string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE subscriptions SET last_triggered_at = ?, retry_count = 0, last_error = '' WHERE id = ?`, timestamp, id)
	return err
}

func (r *SubscriptionRepository) RecordFailure(id, lastError string) error {
	_, err := r.db.Exec(`UPDATE subscriptions SET retry_count = retry_count + 1, last_error = ? WHERE id = ?`, lastError, id)
	return err
}

func scanSubscription(scan func(dest ...interface{}) error) (*models.Subscription, error) {
	var s models.Subscription
	var eventsStr string
	var lastTriggeredAt sql.NullInt64
	var lastError sql.NullString

	err := scan(&s.ID, &s.URL, &eventsStr, &s.Secret, &s.Status, &s.RetryCount,
		&lastTriggeredAt, &lastError, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lastTriggeredAt.Valid {
		s.LastTriggeredAt = lastTriggeredAt.Int64
	}
	if lastError.Valid {
		s.LastError = lastError.String
	}
	json.Unmarshal([]byte(eventsStr), &s.EventTypes)

	return &s, nil
}
