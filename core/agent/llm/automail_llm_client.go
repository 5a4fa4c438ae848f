package llm

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"automail_server/pkg/logger"
	"automail_server/pkg/resilience"
)

const DefaultModel = "gpt-4o-mini"

// completionFn performs one chat completion call. Swappable in tests.
type completionFn func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)

// Client wraps the OpenAI chat API behind the LLM port. All calls run
// through a shared circuit breaker with bounded retries.
type Client struct {
	complete    completionFn
	cb          *gobreaker.CircuitBreaker
	model       string
	maxTokens   int
	temperature float32
	maxRetries  int
	bodyPreview int
	timeout     time.Duration
	log         *logger.Logger
}

type ClientConfig struct {
	APIKey            string
	Model             string
	MaxTokens         int
	Temperature       float64
	MaxRetries        int
	BodyPreviewLength int
	Timeout           time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	bodyPreview := cfg.BodyPreviewLength
	if bodyPreview <= 0 {
		bodyPreview = 2000
	}

	api := openai.NewClient(cfg.APIKey)
	return &Client{
		complete:    api.CreateChatCompletion,
		cb:          resilience.NewBreaker("openai-api"),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(cfg.Temperature),
		maxRetries:  maxRetries,
		bodyPreview: bodyPreview,
		timeout:     cfg.Timeout,
		log:         logger.WithComponent("llm"),
	}
}

// Complete sends a single user prompt and returns the trimmed text.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := resilience.Execute(c.cb, func() (openai.ChatCompletionResponse, error) {
			return c.complete(ctx, req)
		})
		if err != nil {
			lastErr = err
			if err == gobreaker.ErrOpenState || ctx.Err() != nil {
				break
			}
			continue
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}
	return "", lastErr
}

// stripJSONFences removes markdown code fences some models wrap JSON
// payloads in.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// truncateBody limits email bodies fed into prompts.
func truncateBody(body string, maxLen int) string {
	if len(body) <= maxLen {
		return body
	}
	return body[:maxLen] + "..."
}
