package repositories

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"alertgate/internal/platform/database"
	"alertgate/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	if err := database.MigrateUp(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestAlertRepository_InsertAndList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewAlertRepository(db)

	archived, err := repo.Insert(models.WebhookAlert{
		AlertID:   "cpu-1",
		AlertName: "High CPU",
		Severity:  "critical",
		Source:    "datadog",
		Service:   "checkout",
	})
	if err != nil {
		t.Fatalf("Failed to insert alert: %v", err)
	}
	if archived.ID == "" || archived.ReceivedAt == 0 {
		t.Errorf("Insert did not populate id/received_at: %+v", archived)
	}

	if _, err := repo.Insert(models.WebhookAlert{AlertID: "mem-1", AlertName: "OOM", Source: "grafana"}); err != nil {
		t.Fatalf("Failed to insert second alert: %v", err)
	}

	all, err := repo.List("", 10)
	if err != nil {
		t.Fatalf("Failed to list alerts: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 alerts, got %d", len(all))
	}

	filtered, err := repo.List("datadog", 10)
	if err != nil {
		t.Fatalf("Failed to list filtered alerts: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("Expected 1 datadog alert, got %d", len(filtered))
	}
	if filtered[0].AlertID != "cpu-1" {
		t.Errorf("Expected alert cpu-1, got %s", filtered[0].AlertID)
	}
}

func TestAlertRepository_DeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewAlertRepository(db)

	archived, err := repo.Insert(models.WebhookAlert{AlertID: "old-1", AlertName: "stale", Source: "generic"})
	if err != nil {
		t.Fatalf("Failed to insert alert: %v", err)
	}

	deleted, err := repo.DeleteOlderThan(archived.ReceivedAt + 1)
	if err != nil {
		t.Fatalf("Failed to prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted row, got %d", deleted)
	}

	remaining, err := repo.List("", 10)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected empty archive, got %d rows", len(remaining))
	}
}

func TestSubscriptionRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewSubscriptionRepository(db)

	sub := &models.Subscription{
		URL:        "https://hooks.example.com/alerts",
		EventTypes: []string{"alert.triggered"},
		Secret:     "whsec_test",
	}
	if err := repo.Create(sub); err != nil {
		t.Fatalf("Failed to create subscription: %v", err)
	}
	if sub.ID == "" || sub.Status != "active" {
		t.Errorf("Create did not populate defaults: %+v", sub)
	}

	fetched, err := repo.GetByID(sub.ID)
	if err != nil {
		t.Fatalf("Failed to get subscription: %v", err)
	}
	if fetched.URL != sub.URL {
		t.Errorf("Expected URL %s, got %s", sub.URL, fetched.URL)
	}
	if len(fetched.EventTypes) != 1 || fetched.EventTypes[0] != "alert.triggered" {
		t.Errorf("Event types not round-tripped: %v", fetched.EventTypes)
	}

	secret, err := repo.SigningSecret(sub.ID)
	if err != nil {
		t.Fatalf("Failed to get signing secret: %v", err)
	}
	if secret != "whsec_test" {
		t.Errorf("Expected secret whsec_test, got %s", secret)
	}
}

func TestSubscriptionRepository_GetByEvent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewSubscriptionRepository(db)

	exact := &models.Subscription{URL: "https://a.example.com", EventTypes: []string{"alert.triggered"}}
	wildcard := &models.Subscription{URL: "https://b.example.com", EventTypes: []string{"*"}}
	other := &models.Subscription{URL: "https://c.example.com", EventTypes: []string{"alert.replayed"}}
	for _, s := range []*models.Subscription{exact, wildcard, other} {
		if err := repo.Create(s); err != nil {
			t.Fatalf("Failed to create subscription: %v", err)
		}
	}

	// Paused subscriptions never match.
	other.Status = "paused"
	other.EventTypes = []string{"alert.triggered"}
	if err := repo.Update(other); err != nil {
		t.Fatalf("Failed to update subscription: %v", err)
	}

	matched, err := repo.GetByEvent("alert.triggered")
	if err != nil {
		t.Fatalf("Failed to get by event: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matched))
	}
	got := map[string]bool{}
	for _, s := range matched {
		got[s.URL] = true
	}
	if !got[exact.URL] || !got[wildcard.URL] {
		t.Errorf("Wrong subscriptions matched: %v", got)
	}
}

func TestSubscriptionRepository_FailureTracking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewSubscriptionRepository(db)

	sub := &models.Subscription{URL: "https://d.example.com", EventTypes: []string{"*"}}
	if err := repo.Create(sub); err != nil {
		t.Fatalf("Failed to create subscription: %v", err)
	}

	if err := repo.RecordFailure(sub.ID, "HTTP 503"); err != nil {
		t.Fatalf("Failed to record failure: %v", err)
	}
	if err := repo.RecordFailure(sub.ID, "HTTP 500"); err != nil {
		t.Fatalf("Failed to record failure: %v", err)
	}

	fetched, err := repo.GetByID(sub.ID)
	if err != nil {
		t.Fatalf("Failed to get subscription: %v", err)
	}
	if fetched.RetryCount != 2 {
		t.Errorf("Expected retry count 2, got %d", fetched.RetryCount)
	}
	if fetched.LastError != "HTTP 500" {
		t.Errorf("Expected last error HTTP 500, got %s", fetched.LastError)
	}

	if err := repo.UpdateLastTriggered(sub.ID, 1700000000); err != nil {
		t.Fatalf("Failed to update last triggered: %v", err)
	}
	fetched, _ = repo.GetByID(sub.ID)
	if fetched.RetryCount != 0 || fetched.LastError != "" {
		t.Errorf("Success did not reset failure state: %+v", fetched)
	}
	if fetched.LastTriggeredAt != 1700000000 {
		t.Errorf("Expected last_triggered_at 1700000000, got %d", fetched.LastTriggeredAt)
	}
}

func TestSubscriptionRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewSubscriptionRepository(db)

	sub := &models.Subscription{URL: "https://e.example.com", EventTypes: []string{"*"}}
	if err := repo.Create(sub); err != nil {
		t.Fatalf("Failed to create subscription: %v", err)
	}
	if err := repo.Delete(sub.ID); err != nil {
		t.Fatalf("Failed to delete subscription: %v", err)
	}
	if _, err := repo.GetByID(sub.ID); err != sql.ErrNoRows {
		t.Errorf("Expected sql.ErrNoRows, got %v", err)
	}
}

func TestAPIKeyRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewAPIKeyRepository(db)

	key := &models.APIKey{
		Name:      "ops",
		KeyHash:   "$2a$10$fakehash",
		KeyPrefix: "agk_12345678",
		Role:      "admin",
	}
	if err := repo.Create(key); err != nil {
		t.Fatalf("Failed to create key: %v", err)
	}

	candidates, err := repo.GetByPrefix("agk_12345678")
	if err != nil {
		t.Fatalf("Failed to get key by prefix: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate key, got %d", len(candidates))
	}
	if candidates[0].Name != "ops" || candidates[0].Role != "admin" {
		t.Errorf("Unexpected key: %+v", candidates[0])
	}

	if err := repo.TouchLastUsed(key.ID); err != nil {
		t.Fatalf("Failed to touch key: %v", err)
	}

	if err := repo.Revoke(key.ID); err != nil {
		t.Fatalf("Failed to revoke key: %v", err)
	}
	candidates, err = repo.GetByPrefix("agk_12345678")
	if err != nil {
		t.Fatalf("Failed to get key by prefix: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected revoked key to be invisible, got %d candidates", len(candidates))
	}
}
