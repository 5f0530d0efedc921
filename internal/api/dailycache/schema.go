package dailycache

import (
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const dateLayout = "2006-01-02"

var ErrTypeRequired = errors.New("type parameter is required")

type SaveRequest struct {
	Type string          `json:"type"`
	Date string          `json:"date"`
	Data json.RawMessage `json:"data"`
}

func (r *SaveRequest) Validate() error {
	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		return ErrTypeRequired
	}
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return errors.New("data is required")
	}
	return nil
}

type LookupResponse struct {
	Success   bool            `json:"success"`
	Cached    bool            `json:"cached"`
	Data      json.RawMessage `json:"data"`
	AgeHours  *float64        `json:"age_hours,omitempty"`
	Expired   *bool           `json:"expired,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

type SaveResponse struct {
	Success bool   `json:"success"`
	Cached  bool   `json:"cached"`
	Date    string `json:"date"`
	Type    string `json:"type"`
}

// resolveDate returns date unchanged when it is a valid ISO date, or today's
// UTC date when empty.
func resolveDate(date string, now time.Time) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return now.UTC().Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return date, nil
}
