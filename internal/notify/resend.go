package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const DefaultResendURL = "https://api.resend.com"

var ErrNoRecipients = errors.New("email has no recipients")

type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Sender delivers one email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, email Email) (string, error)
}

// ResendSender posts to the Resend REST API.
type ResendSender struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		apiKey:  apiKey,
		from:    from,
		baseURL: DefaultResendURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *ResendSender) WithBaseURL(baseURL string) *ResendSender {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

func (s *ResendSender) Send(ctx context.Context, email Email) (string, error) {
	if s.apiKey == "" {
		return "", errors.New("RESEND_API_KEY not configured")
	}
	if len(email.To) == 0 {
		return "", ErrNoRecipients
	}
	if email.From == "" {
		email.From = s.from
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Resend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("Resend API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode Resend response: %w", err)
	}
	return out.ID, nil
}
