package appconfig

import (
	"errors"
	"strings"

	json "github.com/goccy/go-json"
)

var (
	ErrNotFound    = errors.New("config key not found")
	ErrKeyRequired = errors.New("config_key is required")
)

const DefaultCategory = "general"

type UpsertRequest struct {
	ConfigKey      string          `json:"config_key"`
	ConfigCategory string          `json:"config_category"`
	ConfigValue    json.RawMessage `json:"config_value"`
	Description    string          `json:"description"`
}

func (r *UpsertRequest) Validate() error {
	r.ConfigKey = strings.TrimSpace(r.ConfigKey)
	if r.ConfigKey == "" {
		return ErrKeyRequired
	}
	if len(r.ConfigValue) == 0 {
		return errors.New("config_value is required")
	}
	r.ConfigCategory = strings.TrimSpace(r.ConfigCategory)
	if r.ConfigCategory == "" {
		r.ConfigCategory = DefaultCategory
	}
	return nil
}

// normalizeValue unwraps a value sent as a JSON-encoded string. The inner
// text is parsed once; text that is not JSON stays a JSON string.
func normalizeValue(raw json.RawMessage) json.RawMessage {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return raw
	}
	trimmed := strings.TrimSpace(s)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	return raw
}
