package briefings

import (
	"strings"

	"github.com/gobapps/gob-api/internal/briefing"
)

type BriefingRequest struct {
	Type                     string   `json:"type"`
	PerplexityPromptOverride string   `json:"perplexityPromptOverride"`
	To                       []string `json:"to" binding:"omitempty,dive,email"`
	PreviewOnly              bool     `json:"previewOnly"`
	Validate                 bool     `json:"validate"`
}

// toRequest resolves the briefing type. Without a type, a prompt override
// means a custom briefing and anything else the morning one.
func (r BriefingRequest) toRequest() (briefing.Request, error) {
	prompt := strings.TrimSpace(r.PerplexityPromptOverride)
	raw := r.Type
	if strings.TrimSpace(raw) == "" {
		raw = string(briefing.TypeMorning)
		if prompt != "" {
			raw = string(briefing.TypeCustom)
		}
	}
	t, err := briefing.NormalizeType(raw)
	if err != nil {
		return briefing.Request{}, err
	}
	return briefing.Request{
		Type:           t,
		PromptOverride: prompt,
		To:             r.To,
		PreviewOnly:    r.PreviewOnly,
		Validate:       r.Validate,
	}, nil
}

type BriefingResponse struct {
	Success bool `json:"success"`
	*briefing.Result
}
