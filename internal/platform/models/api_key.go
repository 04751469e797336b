package models

// APIKey authenticates an operator against the management API. The raw
// key is shown once at creation; only the bcrypt hash is stored.
type APIKey struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	KeyHash    string `json:"-"`
	KeyPrefix  string `json:"key_prefix"`
	Role       string `json:"role"` // operator, admin
	LastUsedAt *int64 `json:"last_used_at,omitempty"`
	ExpiresAt  *int64 `json:"expires_at,omitempty"`
	CreatedAt  int64  `json:"created_at"`
	RevokedAt  *int64 `json:"revoked_at,omitempty"`
}
