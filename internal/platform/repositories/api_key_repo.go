package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"alertgate/internal/platform/models"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(key *models.APIKey) error {
	if key.ID == "" {
		key.ID = "key_" + uuid.New().String()
	}
	key.CreatedAt = time.Now().Unix()
	if key.Role == "" {
		key.Role = "operator"
	}

	query := `
		INSERT INTO api_keys (id, name, key_hash, key_prefix, role, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Role, key.CreatedAt, key.ExpiresAt)
	return err
}

// GetByPrefix returns non-revoked keys sharing the given prefix. The raw
// key is verified against each candidate's bcrypt hash by the caller.
func (r *APIKeyRepository) GetByPrefix(prefix string) ([]*models.APIKey, error) {
	query := `SELECT id, name, key_hash, key_prefix, role, last_used_at, expires_at, created_at, revoked_at FROM api_keys WHERE key_prefix = ? AND revoked_at IS NULL`
	rows, err := r.db.Query(query, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		var lastUsedAt, expiresAt, revokedAt sql.NullInt64

		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Role,
			&lastUsedAt, &expiresAt, &k.CreatedAt, &revokedAt); err != nil {
			return nil, err
		}

		if lastUsedAt.Valid {
			k.LastUsedAt = &lastUsedAt.Int64
		}
		if expiresAt.Valid {
			k.ExpiresAt = &expiresAt.Int64
		}
		if revokedAt.Valid {
			k.RevokedAt = &revokedAt.Int64
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) TouchLastUsed(id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}

func (r *APIKeyRepository) Revoke(id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET revoked_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}
