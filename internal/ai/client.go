package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"exam-service/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an English teacher."

var (
	// ErrEmptyReply means the model returned no content. Callers may
	// re-prompt; the reply is not a transport failure.
	ErrEmptyReply = errors.New("ai reply was empty")
	// ErrMalformedReply means the reply did not parse as feedback JSON or
	// was missing the feedback field. The raw reply is carried in the
	// wrapped error text for logging.
	ErrMalformedReply = errors.New("ai reply was not valid feedback JSON")
)

// FeedbackResult is the structured reply the prompts ask the model for.
type FeedbackResult struct {
	Feedback string       `json:"feedback"`
	Mark     *models.Mark `json:"mark,omitempty"`
}

// Client sends composed grading prompts to a chat-completion endpoint.
// One best-effort attempt per request; no retry loop.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// GenerateFeedback sends the prompt and parses the reply. Transport
// failures, empty replies and malformed replies are reported distinctly.
func (c *Client) GenerateFeedback(ctx context.Context, prompt string) (*FeedbackResult, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyReply
	}
	return parseFeedbackReply(resp.Choices[0].Message.Content)
}

func parseFeedbackReply(raw string) (*FeedbackResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyReply
	}

	var result FeedbackResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedReply, raw)
	}
	if result.Feedback == "" {
		return nil, fmt.Errorf("%w: missing feedback field: %s", ErrMalformedReply, raw)
	}
	return &result, nil
}
