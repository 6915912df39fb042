package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/scanvoca/scanvoca/internal/dictionary"
)

// RecordGenerator asks a Provider for a definition and parses the reply.
// Only malformed replies are retried; service errors return at once.
type RecordGenerator struct {
	provider    Provider
	maxAttempts uint
	timeout     time.Duration
	logger      *slog.Logger
}

type Option func(*RecordGenerator)

// WithMaxAttempts sets the total number of provider calls per word. Values below 1 are ignored.
func WithMaxAttempts(n uint) Option {
	return func(g *RecordGenerator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithTimeout bounds each provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *RecordGenerator) {
		g.timeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *RecordGenerator) {
		g.logger = logger
	}
}

func NewRecordGenerator(provider Provider, opts ...Option) *RecordGenerator {
	g := &RecordGenerator{
		provider:    provider,
		maxAttempts: DefaultMaxRetryAttempts,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements Generator.
func (g *RecordGenerator) Generate(ctx context.Context, word string) (dictionary.Record, error) {
	if g.provider == nil {
		return dictionary.Record{}, ErrNotConfigured
	}
	prompt := BuildPrompt(word)

	var result dictionary.Record
	attempt := uint(0)
	err := retry.Do(
		func() error {
			attempt++
			content, err := g.complete(ctx, prompt)
			if err != nil {
				return err
			}
			rec, err := ParseDefinition(word, content)
			if err != nil {
				g.logger.Warn("malformed generation response",
					"word", word,
					"attempt", attempt,
					"error", err)
				return err
			}
			result = rec
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(g.maxAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrMalformedResponse)
		}),
	)
	if err != nil {
		return dictionary.Record{}, fmt.Errorf("generate %q after %d attempt(s): %w", word, attempt, err)
	}
	return result, nil
}

func (g *RecordGenerator) complete(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	content, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrService) {
			return "", fmt.Errorf("%w: %w", ErrService, err)
		}
		return "", err
	}
	return content, nil
}
