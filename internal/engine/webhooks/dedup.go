package webhooks

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"alertgate/internal/platform/models"
)

// Fingerprint derives a stable key from the fields that identify an
// alert. Two structurally identical alerts always produce the same
// fingerprint.
func Fingerprint(alert models.WebhookAlert) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", alert.AlertID, alert.AlertName, alert.Source)))
	return hex.EncodeToString(h[:])
}

// Deduper tracks recently seen fingerprints. Entries expire after the
// configured window so a vendor legitimately re-raising an alert hours
// later is not silently dropped, and the cache stays bounded.
type Deduper struct {
	mu   sync.Mutex
	seen *expirable.LRU[string, struct{}]
}

// NewDeduper creates a deduper holding at most maxEntries fingerprints,
// each for at most window. A zero window means entries only leave by LRU
// eviction.
func NewDeduper(maxEntries int, window time.Duration) *Deduper {
	if maxEntries <= 0 {
		maxEntries = 100000
	}
	return &Deduper{
		seen: expirable.NewLRU[string, struct{}](maxEntries, nil, window),
	}
}

// Seen reports whether the fingerprint was already recorded, marking it
// seen if not. Check and mark are a single critical section so two
// concurrent identical requests cannot both observe "new".
func (d *Deduper) Seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen.Get(fingerprint); ok {
		return true
	}
	d.seen.Add(fingerprint, struct{}{})
	return false
}

// Len returns the number of fingerprints currently resident.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen.Len()
}
