package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apiContext "alertgate/internal/api/context"
	"alertgate/internal/platform/auth"
)

type Entry struct {
	ID           string                 `json:"id"`
	Actor        string                 `json:"actor"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	IPAddress    string                 `json:"ip_address"`
	CreatedAt    int64                  `json:"created_at"`
}

// Logger records operator actions (replays, subscription changes) in the
// audit_logs table. Recording failures are logged and swallowed; an audit
// write must never fail the operation it describes.
type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ctx context.Context, r *http.Request, action, resourceType, resourceID string, metadata map[string]interface{}) {
	actor := "unknown"
	if claims, ok := ctx.Value(apiContext.Claims).(*auth.Claims); ok {
		actor = claims.Name
	}

	ip := ""
	if r != nil {
		ip = r.RemoteAddr
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			ip = fwd
		}
	}

	var metaJSON []byte
	if metadata != nil {
		metaJSON, _ = json.Marshal(metadata)
	}

	query := `
		INSERT INTO audit_logs (id, actor, action, resource_type, resource_id, metadata, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := l.db.Exec(query, "aud_"+uuid.New().String(), actor, action, resourceType, resourceID,
		string(metaJSON), ip, time.Now().Unix())
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("failed to write audit log")
	}
}

func (l *Logger) List(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, actor, action, resource_type, resource_id, metadata, ip_address, created_at FROM audit_logs ORDER BY created_at DESC LIMIT ?`
	rows, err := l.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var metaStr sql.NullString
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.ResourceType, &e.ResourceID,
			&metaStr, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, err
		}
		if metaStr.Valid && metaStr.String != "" {
			json.Unmarshal([]byte(metaStr.String), &e.Metadata)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
