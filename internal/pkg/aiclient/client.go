package aiclient

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vietscribe/vietscribe/internal/pkg/env"
)

// Client is a thin wrapper over the OpenAI chat completion API. Feature
// services depend on the Completer interface in their own package, so tests
// never touch this type.
type Client struct {
	api   *openai.Client
	model string
}

// NewClientFromEnv builds a client from OPENAI_API_KEY and AI_MODEL. Returns
// nil when the key is missing; AI features are then unavailable.
func NewClientFromEnv() *Client {
	key := env.GetEnv("OPENAI_API_KEY", "")
	if key == "" {
		return nil
	}
	return &Client{
		api:   openai.NewClient(key),
		model: env.GetEnv("AI_MODEL", openai.GPT4oMini),
	}
}

// Complete sends one system+user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c == nil {
		return "", errors.New("ai client is not configured")
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
