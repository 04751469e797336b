package database

import "database/sql"

var schemaUp = []string{
	`CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		alert_id TEXT NOT NULL,
		alert_name TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		service TEXT NOT NULL DEFAULT '',
		environment TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		received_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_source ON alerts(source)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_received_at ON alerts(received_at)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		event_types TEXT NOT NULL,
		secret TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		retry_count INTEGER NOT NULL DEFAULT 0,
		last_triggered_at INTEGER,
		last_error TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		key_hash TEXT NOT NULL,
		key_prefix TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'operator',
		last_used_at INTEGER,
		expires_at INTEGER,
		created_at INTEGER NOT NULL,
		revoked_at INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_api_keys_prefix ON api_keys(key_prefix)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL DEFAULT '',
		metadata TEXT,
		ip_address TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)`,
}

var schemaDown = []string{
	`DROP TABLE IF EXISTS audit_logs`,
	`DROP TABLE IF EXISTS api_keys`,
	`DROP TABLE IF EXISTS subscriptions`,
	`DROP TABLE IF EXISTS alerts`,
}

// MigrateUp creates the gateway schema.
func MigrateUp(db *sql.DB) error {
	for _, stmt := range schemaUp {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown drops the gateway schema.
func MigrateDown(db *sql.DB) error {
	for _, stmt := range schemaDown {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
