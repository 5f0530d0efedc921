package emaildesign

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/gobapps/gob-api/internal/briefing"
)

const (
	ConfigKey      = "email_design"
	ConfigCategory = "email"
)

// ConfigStore is the typed view of app_config.
type ConfigStore interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	PutJSON(ctx context.Context, key, category, description string, v interface{}) error
}

type Service struct {
	store ConfigStore
}

func NewService(store ConfigStore) *Service {
	return &Service{store: store}
}

// Merged returns the default design with the stored overrides applied.
func (s *Service) Merged(ctx context.Context) (map[string]interface{}, error) {
	overrides, err := s.overrides(ctx)
	if err != nil {
		return nil, err
	}
	return DeepMerge(defaults(), overrides), nil
}

// Update merges patch into the stored overrides and returns the new merged design.
func (s *Service) Update(ctx context.Context, patch map[string]interface{}) (map[string]interface{}, error) {
	overrides, err := s.overrides(ctx)
	if err != nil {
		return nil, err
	}
	overrides = DeepMerge(overrides, patch)
	if err := s.store.PutJSON(ctx, ConfigKey, ConfigCategory, "Email briefing design overrides", overrides); err != nil {
		return nil, err
	}
	return DeepMerge(defaults(), overrides), nil
}

// Design implements briefing.DesignSource.
func (s *Service) Design(ctx context.Context) (briefing.Design, error) {
	merged, err := s.Merged(ctx)
	if err != nil {
		return briefing.Design{}, err
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return briefing.Design{}, err
	}
	var d briefing.Design
	if err := json.Unmarshal(raw, &d); err != nil {
		return briefing.Design{}, fmt.Errorf("stored email design does not match the design shape: %w", err)
	}
	return d, nil
}

func (s *Service) overrides(ctx context.Context) (map[string]interface{}, error) {
	overrides := map[string]interface{}{}
	if _, err := s.store.GetJSON(ctx, ConfigKey, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

func defaults() map[string]interface{} {
	raw, _ := json.Marshal(briefing.DefaultDesign())
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	return out
}

// DeepMerge returns a new map with src applied over dst. Nested objects are
// merged key by key; any other src value replaces the dst value.
func DeepMerge(dst, src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]interface{})
		dstMap, dstIsMap := out[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			out[k] = DeepMerge(dstMap, srcMap)
			continue
		}
		out[k] = v
	}
	return out
}
