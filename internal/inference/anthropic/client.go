// Package anthropic implements inference.Provider on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/scanvoca/scanvoca/internal/inference"
)

const DefaultModel = string(anthropic.ModelClaudeHaiku4_5)

type Client struct {
	client anthropic.Client
	model  string
	apiKey string
}

// NewClient creates a Client. Extra request options are applied after the API key.
func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{
		client: anthropic.NewClient(opts...),
		model:  model,
		apiKey: apiKey,
	}
}

func (c *Client) GetModel() string {
	return c.model
}

// Complete implements inference.Provider.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", inference.ErrNotConfigured
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   inference.MaxTokens,
		Temperature: anthropic.Float(inference.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: inference.SystemPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: messages.New > %w", inference.ErrService, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: no text content in message %s", inference.ErrMalformedResponse, msg.ID)
	}
	return sb.String(), nil
}
