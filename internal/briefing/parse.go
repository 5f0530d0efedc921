package briefing

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"
)

var ErrNotJSONObject = errors.New("briefing data is not a JSON object")

// ParseData turns a research completion into a JSON object. The content may be
// fenced, wrapped in prose, or a JSON string holding the object; a string is
// decoded at most once more.
func ParseData(content string) (json.RawMessage, error) {
	raw := []byte(stripFences(content))

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		extracted, ok := extractObject(raw)
		if !ok {
			return nil, fmt.Errorf("failed to parse briefing data: %w", err)
		}
		raw = extracted
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to parse briefing data: %w", err)
		}
	}

	if s, ok := v.(string); ok {
		raw = []byte(stripFences(s))
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to parse nested briefing data: %w", err)
		}
	}

	if _, ok := v.(map[string]interface{}); !ok {
		return nil, ErrNotJSONObject
	}
	return json.RawMessage(bytes.TrimSpace(raw)), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string, e.g. "json"
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func extractObject(b []byte) ([]byte, bool) {
	start := bytes.IndexByte(b, '{')
	end := bytes.LastIndexByte(b, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	return b[start : end+1], true
}

// Data is the shape the research prompt asks for. Only the fields the
// composer depends on are validated.
type Data struct {
	Date      string       `json:"date" validate:"required"`
	Summary   string       `json:"summary" validate:"required,min=20"`
	Markets   []MarketMove `json:"markets" validate:"required,min=1,dive"`
	Headlines []Headline   `json:"headlines" validate:"omitempty,dive"`
	Calendar  []Event      `json:"calendar" validate:"omitempty,dive"`
	Sources   []string     `json:"sources" validate:"omitempty,dive,url"`
}

type MarketMove struct {
	Name          string   `json:"name" validate:"required"`
	Value         *float64 `json:"value" validate:"required"`
	ChangePercent *float64 `json:"change_percent"`
}

type Headline struct {
	Title  string `json:"title" validate:"required"`
	Source string `json:"source"`
}

type Event struct {
	Time  string `json:"time"`
	Event string `json:"event" validate:"required"`
}

// ValidateData checks raw against Data.
func ValidateData(v *validator.Validate, raw json.RawMessage) error {
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("briefing data validation failed: %w", err)
	}
	if err := v.Struct(d); err != nil {
		return fmt.Errorf("briefing data validation failed: %w", err)
	}
	return nil
}
