package inference

import (
	"context"
	"errors"

	"github.com/scanvoca/scanvoca/internal/dictionary"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Provider sends a prompt to a text generation service and returns its raw reply.
//
// Implementations return ErrNotConfigured when they have no credential, and
// ErrService for transport, quota and server failures. A reply that arrives
// but carries no text is reported as ErrMalformedResponse.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator produces a definition record for a single normalized word.
type Generator interface {
	Generate(ctx context.Context, word string) (dictionary.Record, error)
}

var (
	ErrNotConfigured     = errors.New("generation service is not configured")
	ErrMalformedResponse = errors.New("malformed generation response")
	ErrService           = errors.New("generation service failure")
)

const (
	// DefaultMaxRetryAttempts is the total number of calls made for one word
	// when replies keep failing to parse.
	DefaultMaxRetryAttempts = 3

	Temperature = 0.3
	MaxTokens   = 2000
)
