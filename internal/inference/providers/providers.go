// Package providers selects the text generation provider named in configuration.
package providers

import (
	"fmt"

	"github.com/scanvoca/scanvoca/internal/config"
	"github.com/scanvoca/scanvoca/internal/inference"
	"github.com/scanvoca/scanvoca/internal/inference/anthropic"
	"github.com/scanvoca/scanvoca/internal/inference/gemini"
	"github.com/scanvoca/scanvoca/internal/inference/openai"
)

// New returns the provider for cfg.Provider.
// A provider without an API key is still returned; its calls fail with inference.ErrNotConfigured.
func New(cfg config.GenerationConfig) (inference.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.Model), nil
	case config.ProviderAnthropic:
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.Model), nil
	case config.ProviderGemini:
		return gemini.NewClient(cfg.GeminiAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

// NewGenerator wires the configured provider into a RecordGenerator.
func NewGenerator(cfg config.GenerationConfig, opts ...inference.Option) (*inference.RecordGenerator, error) {
	provider, err := New(cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]inference.Option{
		inference.WithMaxAttempts(cfg.MaxAttempts),
		inference.WithTimeout(cfg.Timeout),
	}, opts...)
	return inference.NewRecordGenerator(provider, opts...), nil
}
