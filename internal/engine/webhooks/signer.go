package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex HMAC-SHA256 of payload keyed by secret. Used for
// both outbound delivery signatures and inbound verification.
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks an inbound signature. An empty secret disables
// verification (open mode). The comparison is constant-time.
func Verify(payload []byte, signature, secret string) bool {
	if secret == "" {
		return true
	}
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
