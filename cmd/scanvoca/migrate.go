package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/scanvoca/scanvoca/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := database.Migrate(cmd.Context(), cfg.Database, slog.Default()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return nil
		},
	}
}
