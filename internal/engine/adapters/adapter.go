package adapters

import (
	"sort"

	"alertgate/internal/platform/models"
)

// Adapter normalizes one vendor's webhook payload into canonical alerts.
// Adapters are pure: missing optional fields get defaults, and a payload
// may legitimately produce zero alerts (e.g. a resolve-only notification).
type Adapter interface {
	Name() string
	Normalize(payload map[string]interface{}) []models.WebhookAlert
}

// Registry is a closed map of source name to adapter. Unknown sources
// fall back to the generic adapter rather than being rejected.
type Registry struct {
	adapters map[string]Adapter
	fallback Adapter
}

func NewRegistry() *Registry {
	fallback := &GenericAdapter{}
	r := &Registry{
		adapters: make(map[string]Adapter),
		fallback: fallback,
	}
	for _, a := range []Adapter{
		&DatadogAdapter{},
		&PagerDutyAdapter{},
		&GrafanaAdapter{},
		&OpsgenieAdapter{},
		fallback,
	} {
		r.adapters[a.Name()] = a
	}
	return r
}

func (r *Registry) Get(source string) Adapter {
	if a, ok := r.adapters[source]; ok {
		return a
	}
	return r.fallback
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getString returns the first present string value among the given keys.
func getString(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if val, ok := payload[key]; ok {
			if s, ok := val.(string); ok {
				return s
			}
		}
	}
	return ""
}

func getMap(payload map[string]interface{}, key string) map[string]interface{} {
	if val, ok := payload[key]; ok {
		if m, ok := val.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

func getSlice(payload map[string]interface{}, key string) []interface{} {
	if val, ok := payload[key]; ok {
		if s, ok := val.([]interface{}); ok {
			return s
		}
	}
	return nil
}
