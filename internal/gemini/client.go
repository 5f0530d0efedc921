package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 15 * time.Second
)

var ErrNoCandidates = errors.New("no candidates returned from API")

// GenerateRequest represents the request payload for the generateContent API
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content holds one turn of the conversation
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part represents a single part of the content
type Part struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// GenerateResponse represents the response from the generateContent API
type GenerateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// Client generates short texts with rotating API keys
type Client struct {
	apiKeys []string
	client  *http.Client
	baseURL string
	model   string
}

// NewClient creates a new client with API keys
func NewClient(keys []string) (*Client, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one API key is required")
	}
	return &Client{
		apiKeys: keys,
		client:  &http.Client{Timeout: DefaultTimeout},
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		model:   DefaultModel,
	}, nil
}

// WithBaseURL points the client at another endpoint (tests, proxies).
func (g *Client) WithBaseURL(baseURL string) *Client {
	g.baseURL = strings.TrimRight(baseURL, "/")
	return g
}

// getRandomKey returns a random API key from the pool
func (g *Client) getRandomKey() string {
	if len(g.apiKeys) == 1 {
		return g.apiKeys[0]
	}
	return g.apiKeys[rand.Intn(len(g.apiKeys))]
}

// GenerateText sends a single-turn prompt and returns the concatenated text parts.
// The call is bounded by DefaultTimeout even when ctx has no deadline.
func (g *Client) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	reqBody := GenerateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: prompt}}},
		},
		GenerationConfig: &GenerationConfig{
			Temperature:     0.4,
			MaxOutputTokens: maxTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.getRandomKey())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(genResp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrNoCandidates
	}
	return text, nil
}
