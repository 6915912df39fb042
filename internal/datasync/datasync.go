// Package datasync imports prepared wordbooks into the word store.
package datasync

import (
	"context"
	"fmt"
	"io"

	"github.com/scanvoca/scanvoca/internal/dictionary"
	"github.com/scanvoca/scanvoca/internal/validation"
)

const DefaultBatchSize = 100

// ImportResult tracks counts for an import.
type ImportResult struct {
	Imported int
	// Skipped counts blank words, words already stored and repeats within the input.
	Skipped int
	Invalid int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun    bool
	BatchSize int
}

// Importer writes wordbook entries to the store as imported records.
type Importer struct {
	repo      dictionary.Repository
	writer    io.Writer
	validator *validation.Validator
}

// NewImporter creates a new Importer. Progress lines are written to writer.
func NewImporter(repo dictionary.Repository, writer io.Writer) (*Importer, error) {
	v, err := validation.New("json")
	if err != nil {
		return nil, fmt.Errorf("validation.New() > %w", err)
	}
	return &Importer{repo: repo, writer: writer, validator: v}, nil
}

// Import stores every new, valid entry. Entries are checked and inserted in
// chunks of opts.BatchSize; each chunk is written atomically.
func (imp *Importer) Import(ctx context.Context, entries []Entry, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	seen := make(map[string]struct{}, len(entries))
	var chunk []dictionary.Record
	for _, entry := range entries {
		key := dictionary.Normalize(entry.Word)
		if key == "" {
			fmt.Fprintf(imp.writer, "  [SKIP]  blank word\n")
			result.Skipped++
			continue
		}
		if _, ok := seen[key]; ok {
			fmt.Fprintf(imp.writer, "  [SKIP]  %q (repeated)\n", key)
			result.Skipped++
			continue
		}
		seen[key] = struct{}{}

		rec := dictionary.Record{
			Word:          key,
			Pronunciation: entry.Pronunciation,
			Difficulty:    entry.Difficulty,
			Meanings:      entry.Meanings,
			Origin:        dictionary.OriginImported,
			UsageCount:    0,
		}
		fieldErrors, err := imp.validator.Struct(rec)
		if err != nil {
			return nil, fmt.Errorf("validator.Struct(%s) > %w", key, err)
		}
		if len(fieldErrors) > 0 {
			fmt.Fprintf(imp.writer, "  [INVALID]  %q: %s\n", key, validation.Messages(fieldErrors))
			result.Invalid++
			continue
		}

		chunk = append(chunk, rec)
		if len(chunk) == batchSize {
			if err := imp.importChunk(ctx, chunk, opts, &result); err != nil {
				return nil, err
			}
			chunk = nil
		}
	}
	if len(chunk) > 0 {
		if err := imp.importChunk(ctx, chunk, opts, &result); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func (imp *Importer) importChunk(ctx context.Context, chunk []dictionary.Record, opts ImportOptions, result *ImportResult) error {
	keys := make([]string, len(chunk))
	for i, rec := range chunk {
		keys[i] = rec.Word
	}
	existing, err := imp.repo.GetMany(ctx, keys)
	if err != nil {
		return fmt.Errorf("GetMany() > %w", err)
	}
	stored := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		stored[rec.Word] = struct{}{}
	}

	var fresh []dictionary.Record
	for _, rec := range chunk {
		if _, ok := stored[rec.Word]; ok {
			fmt.Fprintf(imp.writer, "  [SKIP]  %q\n", rec.Word)
			result.Skipped++
			continue
		}
		fmt.Fprintf(imp.writer, "  [NEW]  %q\n", rec.Word)
		fresh = append(fresh, rec)
	}
	if len(fresh) == 0 {
		return nil
	}
	if !opts.DryRun {
		if _, err := imp.repo.InsertMany(ctx, fresh); err != nil {
			return fmt.Errorf("InsertMany() > %w", err)
		}
	}
	result.Imported += len(fresh)
	return nil
}
