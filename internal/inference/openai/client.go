package openai

import (
	"context"
	"fmt"
	"log/slog"

	"resty.dev/v3"

	"github.com/scanvoca/scanvoca/internal/inference"
)

const (
	DefaultModel   = "gpt-4o-mini"
	defaultBaseURL = "https://api.openai.com/v1"
)

type Client struct {
	httpClient *resty.Client
	model      string
	apiKey     string
}

func NewClient(apiKey, model string) *Client {
	return newClient(defaultBaseURL, apiKey, model)
}

func newClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
		model:      model,
		apiKey:     apiKey,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete implements inference.Provider
func (client *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if client.apiKey == "" {
		return "", inference.ErrNotConfigured
	}

	requestBody := ChatCompletionRequest{
		Model:       client.model,
		Temperature: inference.Temperature,
		MaxTokens:   inference.MaxTokens,
		Messages: []Message{
			{Role: RoleSystem, Content: inference.SystemPrompt()},
			{Role: RoleUser, Content: prompt},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: httpClient.Post > %w", inference.ErrService, err)
	}
	if response.IsError() {
		return "", fmt.Errorf("%w: response error %d: %s", inference.ErrService, response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response body or choices: %s", inference.ErrMalformedResponse, response.String())
	}
	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: empty response content: %s", inference.ErrMalformedResponse, response.String())
	}
	slog.Default().Debug("openai response content",
		"model", responseBody.Model,
		"totalTokens", responseBody.Usage.TotalTokens,
	)
	return content, nil
}
