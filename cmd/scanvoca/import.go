package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanvoca/scanvoca/internal/datasync"
	"github.com/scanvoca/scanvoca/internal/store"
)

func newImportCommand() *cobra.Command {
	var (
		dryRun    bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "import <wordbook>",
		Short: "Import a JSON or YAML wordbook into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			entries, err := datasync.LoadWordbook(args[0])
			if err != nil {
				return fmt.Errorf("load wordbook: %w", err)
			}

			repo, closeStore, err := store.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = closeStore() }()

			importer, err := datasync.NewImporter(repo, os.Stdout)
			if err != nil {
				return fmt.Errorf("create importer: %w", err)
			}
			result, err := importer.Import(ctx, entries, datasync.ImportOptions{
				DryRun:    dryRun,
				BatchSize: batchSize,
			})
			if err != nil {
				return fmt.Errorf("import words: %w", err)
			}

			fmt.Println("\nImport Summary:")
			if dryRun {
				fmt.Println("  (dry-run mode, no changes made)")
			}
			fmt.Printf("  Words in file:  %d\n", len(entries))
			fmt.Printf("  Imported:       %d\n", result.Imported)
			fmt.Printf("  Skipped:        %d\n", result.Skipped)
			fmt.Printf("  Invalid:        %d\n", result.Invalid)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the database")
	cmd.Flags().IntVar(&batchSize, "batch-size", datasync.DefaultBatchSize, "Number of words written per transaction")
	return cmd
}
