// Package llm wraps OpenAI-compatible chat completion endpoints. The same
// client talks to OpenAI (briefing prose) and Perplexity (research data).
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var (
	ErrNotConfigured = errors.New("LLM endpoint not configured")
	ErrEmptyResponse = errors.New("LLM returned no choices")
)

type Options struct {
	Temperature float64
	MaxTokens   int64
}

// Completion is the text of the first choice plus any citations the provider
// attached (Perplexity does, OpenAI does not).
type Completion struct {
	Content   string
	Model     string
	Citations []string
}

type Client struct {
	name   string
	model  string
	client openai.Client
	ready  bool
}

// NewClient builds a client for endpoint. A full ".../chat/completions" URL is
// accepted and trimmed to its base. Requests are not retried.
func NewClient(name, endpoint, apiKey, model string) *Client {
	c := &Client{name: name, model: model}
	if endpoint == "" || apiKey == "" {
		return c
	}
	base := strings.TrimSuffix(strings.TrimRight(endpoint, "/"), "/chat/completions")
	c.client = openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(base+"/"),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(90*time.Second),
	)
	c.ready = true
	return c
}

func (c *Client) Name() string { return c.name }

func (c *Client) Configured() bool { return c.ready }

// Complete runs one system+user exchange. An empty system prompt is omitted.
func (c *Client) Complete(ctx context.Context, system, user string, opts Options) (*Completion, error) {
	if !c.ready {
		return nil, fmt.Errorf("%s: %w", c.name, ErrNotConfigured)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(opts.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s completion failed: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", c.name, ErrEmptyResponse)
	}

	return &Completion{
		Content:   strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:     resp.Model,
		Citations: citations(resp.RawJSON()),
	}, nil
}

func citations(raw string) []string {
	if raw == "" {
		return nil
	}
	var extra struct {
		Citations []string `json:"citations"`
	}
	if err := json.Unmarshal([]byte(raw), &extra); err != nil {
		return nil
	}
	return extra.Citations
}
