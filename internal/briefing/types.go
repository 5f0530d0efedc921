package briefing

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

type Type string

const (
	TypeMorning Type = "morning"
	TypeMidday  Type = "midday"
	TypeEvening Type = "evening"
	TypeCustom  Type = "custom"
)

var (
	ErrUnknownType    = errors.New("unknown briefing type")
	ErrPromptRequired = errors.New("custom briefing requires perplexityPromptOverride")
	ErrNoRecipients   = errors.New("no recipients for briefing delivery")
)

// NormalizeType accepts the French and English spellings used by the dashboard.
func NormalizeType(raw string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "matin", "morning":
		return TypeMorning, nil
	case "midi", "midday", "noon":
		return TypeMidday, nil
	case "soir", "evening":
		return TypeEvening, nil
	case "custom":
		return TypeCustom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
	}
}

// Label is the French title used in subjects and headers.
func (t Type) Label() string {
	switch t {
	case TypeMorning:
		return "Briefing Matinal"
	case TypeMidday:
		return "Briefing de Mi-Journée"
	case TypeEvening:
		return "Briefing de Clôture"
	default:
		return "Briefing Emma"
	}
}

type Request struct {
	Type           Type
	PromptOverride string
	To             []string
	PreviewOnly    bool
	Validate       bool
}

// Section is one header-delimited part of the composed markdown.
type Section struct {
	Heading string            `json:"heading"`
	Level   int               `json:"level"`
	Headers map[string]string `json:"headers,omitempty"`
	Content string            `json:"content"`
}

type Result struct {
	Type      Type            `json:"type"`
	Subject   string          `json:"subject"`
	JSON      json.RawMessage `json:"json"`
	Markdown  string          `json:"markdown"`
	HTML      string          `json:"html"`
	Sections  []Section       `json:"sections"`
	Delivered bool            `json:"delivered"`
	MessageID string          `json:"messageId,omitempty"`
	ArchiveID string          `json:"archiveId,omitempty"`
}
