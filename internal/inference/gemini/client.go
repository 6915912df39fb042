// Package gemini implements inference.Provider on the Gemini generateContent REST API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/scanvoca/scanvoca/internal/inference"
)

const (
	DefaultModel   = "gemini-flash-latest"
	defaultBaseURL = "https://generativelanguage.googleapis.com"
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
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("x-goog-api-key", apiKey).
		SetHeader("Content-Type", "application/json")
	return &Client{httpClient: client, model: model, apiKey: apiKey}
}

func (c *Client) GetModel() string {
	return c.model
}

type GenerateContentRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// Complete implements inference.Provider.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", inference.ErrNotConfigured
	}

	requestBody := GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: inference.SystemPrompt() + "\n\n" + prompt}}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:      inference.Temperature,
			MaxOutputTokens:  inference.MaxTokens,
			ResponseMimeType: "application/json",
		},
	}

	res, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetBody(requestBody).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("%w: client.R.Post > %w", inference.ErrService, err)
	}
	if res.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: status code: %d, body: %s", inference.ErrService, res.StatusCode(), string(res.Body()))
	}

	var body GenerateContentResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return "", fmt.Errorf("%w: json.Unmarshal > %w", inference.ErrMalformedResponse, err)
	}
	if len(body.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates: %s", inference.ErrMalformedResponse, string(res.Body()))
	}
	var sb strings.Builder
	for _, part := range body.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: empty candidate (finish reason %s)", inference.ErrMalformedResponse, body.Candidates[0].FinishReason)
	}
	return sb.String(), nil
}
