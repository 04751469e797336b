package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"alertgate/internal/platform/models"
)

// ArchivedAlert is a canonical alert as stored in the archive, with the
// row id and ingestion timestamp added.
type ArchivedAlert struct {
	ID         string `json:"id"`
	ReceivedAt int64  `json:"received_at"`
	models.WebhookAlert
}

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Insert archives one accepted alert.
func (r *AlertRepository) Insert(alert models.WebhookAlert) (*ArchivedAlert, error) {
	archived := &ArchivedAlert{
		ID:           "alr_" + uuid.New().String(),
		ReceivedAt:   time.Now().Unix(),
		WebhookAlert: alert,
	}

	query := `
		INSERT INTO alerts (id, alert_id, alert_name, severity, source, service, environment, description, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, archived.ID, alert.AlertID, alert.AlertName, alert.Severity,
		alert.Source, alert.Service, alert.Environment, alert.Description, archived.ReceivedAt)
	if err != nil {
		return nil, err
	}
	return archived, nil
}

// List returns archived alerts, most recent first, optionally filtered by
// source.
func (r *AlertRepository) List(source string, limit int) ([]*ArchivedAlert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, alert_id, alert_name, severity, source, service, environment, description, received_at FROM alerts`
	args := []interface{}{}
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY received_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*ArchivedAlert
	for rows.Next() {
		var a ArchivedAlert
		if err := rows.Scan(&a.ID, &a.AlertID, &a.AlertName, &a.Severity, &a.Source,
			&a.Service, &a.Environment, &a.Description, &a.ReceivedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

// DeleteOlderThan prunes archived alerts received before the cutoff and
// returns the number of rows removed.
func (r *AlertRepository) DeleteOlderThan(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM alerts WHERE received_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
