package ingest

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"alertgate/internal/engine/adapters"
	"alertgate/internal/engine/webhooks"
	"alertgate/internal/platform/models"
)

// AlertHandler receives each newly accepted (non-duplicate) alert. It is
// fire-and-forget: implementations swallow their own failures, which
// never affect the ingestion response.
type AlertHandler func(models.WebhookAlert)

var (
	// ErrUnauthorized means the inbound signature did not match.
	ErrUnauthorized = errors.New("signature verification failed")
	// ErrMalformed means the request body was not valid JSON.
	ErrMalformed = errors.New("malformed payload")
)

// Result summarizes one ingestion request.
type Result struct {
	Processed    int
	Deduplicated int
}

// Service is the ingestion pipeline: verify, parse, adapt, dedup,
// forward. One instance per gateway; all state is constructor-injected
// so tests and multi-tenant deployments get independent instances.
type Service struct {
	registry *adapters.Registry
	deduper  *webhooks.Deduper
	secret   string
	handlers []AlertHandler
}

func NewService(registry *adapters.Registry, deduper *webhooks.Deduper, secret string, handlers ...AlertHandler) *Service {
	return &Service{
		registry: registry,
		deduper:  deduper,
		secret:   secret,
		handlers: handlers,
	}
}

// Process runs one inbound webhook through the pipeline. Authentication
// and parse failures abort the whole request; a duplicate among several
// alerts only drops that alert.
func (s *Service) Process(source string, body []byte, signature string) (*Result, error) {
	if s.secret != "" || signature != "" {
		if !webhooks.Verify(body, signature, s.secret) {
			return nil, ErrUnauthorized
		}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrMalformed
	}

	adapter := s.registry.Get(source)
	alerts := adapter.Normalize(payload)

	result := &Result{}
	for _, alert := range alerts {
		fingerprint := webhooks.Fingerprint(alert)
		if s.deduper.Seen(fingerprint) {
			result.Deduplicated++
			log.Debug().Str("source", source).Str("alert_id", alert.AlertID).
				Msg("duplicate alert dropped")
			continue
		}

		result.Processed++
		for _, handle := range s.handlers {
			handle(alert)
		}
	}

	log.Info().Str("source", source).Str("adapter", adapter.Name()).
		Int("processed", result.Processed).Int("deduplicated", result.Deduplicated).
		Msg("webhook ingested")
	return result, nil
}

// Adapters lists the registered adapter names.
func (s *Service) Adapters() []string {
	return s.registry.Names()
}
