package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanvoca/scanvoca/internal/bootstrap"
	"github.com/scanvoca/scanvoca/internal/cache"
	"github.com/scanvoca/scanvoca/internal/config"
	"github.com/scanvoca/scanvoca/internal/inference"
	"github.com/scanvoca/scanvoca/internal/inference/providers"
	"github.com/scanvoca/scanvoca/internal/resolver"
	"github.com/scanvoca/scanvoca/internal/server"
	"github.com/scanvoca/scanvoca/internal/store"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "scanvoca-server",
		Short:         "Scanvoca word resolution HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	repo, closeStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("store.Open() > %w", err)
	}
	app.AddShutdownHook(bootstrap.CloseHook(closeStore))

	wordCache, closeCache := cache.Open(ctx, cfg.Cache, logger)
	app.AddShutdownHook(bootstrap.CloseHook(closeCache))

	generator, err := providers.NewGenerator(cfg.Generation, inference.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("providers.NewGenerator() > %w", err)
	}
	if cfg.Generation.APIKey() == "" {
		logger.Warn("no API key configured; unknown words will be reported as errors",
			"provider", cfg.Generation.Provider)
	}

	r := resolver.New(wordCache, repo, generator,
		resolver.WithCacheTTL(cfg.Cache.TTL),
		resolver.WithMaxConcurrency(cfg.Generation.MaxConcurrency),
		resolver.WithBatchTimeout(cfg.Resolver.BatchTimeout),
		resolver.WithLogger(logger),
	)
	app.AddShutdownHook(func(context.Context) error {
		r.Wait()
		return nil
	})

	handler, err := server.NewWordHandler(r, repo, cfg.Resolver.MaxBatchSize, logger)
	if err != nil {
		return fmt.Errorf("server.NewWordHandler() > %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.NewHTTPHandler(handler, cfg.Server.CORS.AllowedOrigins),
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
