package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scanvoca/scanvoca/internal/store"
)

type statsReport struct {
	TotalWords       int64   `yaml:"totalWords"`
	GeneratedWords   int64   `yaml:"generatedWords"`
	ImportedWords    int64   `yaml:"importedWords"`
	ManualWords      int64   `yaml:"manualWords"`
	TotalUsage       int64   `yaml:"totalUsage"`
	AverageUsage     float64 `yaml:"averageUsage"`
	SavedGenerations int64   `yaml:"savedGenerations"`
	HitRate          string  `yaml:"hitRate"`
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show word statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			repo, closeStore, err := store.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = closeStore() }()

			stats, err := repo.Stats(ctx)
			if err != nil {
				return fmt.Errorf("load stats: %w", err)
			}

			out, err := yaml.Marshal(statsReport{
				TotalWords:       stats.TotalWords,
				GeneratedWords:   stats.GeneratedWords,
				ImportedWords:    stats.ImportedWords,
				ManualWords:      stats.ManualWords,
				TotalUsage:       stats.TotalUsage,
				AverageUsage:     stats.AverageUsage(),
				SavedGenerations: stats.SavedGenerations(),
				HitRate:          fmt.Sprintf("%.1f%%", stats.HitRate()),
			})
			if err != nil {
				return fmt.Errorf("yaml.Marshal() > %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
