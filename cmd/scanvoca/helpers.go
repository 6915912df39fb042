package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scanvoca/scanvoca/internal/cache"
	"github.com/scanvoca/scanvoca/internal/config"
	"github.com/scanvoca/scanvoca/internal/inference"
	"github.com/scanvoca/scanvoca/internal/inference/providers"
	"github.com/scanvoca/scanvoca/internal/resolver"
	"github.com/scanvoca/scanvoca/internal/store"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// pipeline holds the collaborators of a resolver and how to release them.
type pipeline struct {
	resolver *resolver.Resolver
	closers  []func() error
}

func (p *pipeline) Close() error {
	p.resolver.Wait()
	var firstErr error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	repo, closeStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	wordCache, closeCache := cache.Open(ctx, cfg.Cache, logger)

	generator, err := providers.NewGenerator(cfg.Generation, inference.WithLogger(logger))
	if err != nil {
		_ = closeCache()
		_ = closeStore()
		return nil, fmt.Errorf("create generator: %w", err)
	}
	if cfg.Generation.APIKey() == "" {
		logger.Warn("no API key configured; unknown words cannot be generated",
			"provider", cfg.Generation.Provider)
	}

	r := resolver.New(wordCache, repo, generator,
		resolver.WithCacheTTL(cfg.Cache.TTL),
		resolver.WithMaxConcurrency(cfg.Generation.MaxConcurrency),
		resolver.WithBatchTimeout(cfg.Resolver.BatchTimeout),
		resolver.WithLogger(logger),
	)
	return &pipeline{
		resolver: r,
		closers:  []func() error{closeStore, closeCache},
	}, nil
}
