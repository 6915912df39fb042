package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/scanvoca/scanvoca/internal/cli"
	"github.com/scanvoca/scanvoca/internal/resolver"
)

// OutputFormat selects how a resolved batch is written.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

var _ pflag.Value = (*OutputFormat)(nil)

func (f *OutputFormat) String() string {
	return string(*f)
}

func (f *OutputFormat) Set(value string) error {
	switch OutputFormat(value) {
	case OutputText, OutputJSON, OutputYAML:
		*f = OutputFormat(value)
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be one of text, json, yaml", value)
	}
}

func (f *OutputFormat) Type() string {
	return "OutputFormat"
}

func newResolveCommand() *cobra.Command {
	var inputFile string
	output := OutputText

	cmd := &cobra.Command{
		Use:   "resolve [words...]",
		Short: "Resolve words through the cache, the store and the generation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			words := args
			if inputFile != "" {
				fileWords, err := readWords(inputFile)
				if err != nil {
					return fmt.Errorf("read words: %w", err)
				}
				words = append(words, fileWords...)
			}
			if len(words) == 0 {
				return fmt.Errorf("no words given")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			p, err := newPipeline(ctx, cfg, slog.Default())
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			batch := p.resolver.Resolve(ctx, words)
			return writeBatch(cmd.OutOrStdout(), batch, output)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "file with one word per line (- for stdin)")
	cmd.Flags().VarP(&output, "output", "o", "output format: text, json or yaml")
	return cmd
}

func writeBatch(w io.Writer, batch resolver.Batch, output OutputFormat) error {
	switch output {
	case OutputText:
		cli.NewBatchPrinter(w).Print(batch)
		return nil
	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(batch)
	case OutputYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()
		return encoder.Encode(batch)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func readWords(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			words = append(words, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner.Scan > %w", err)
	}
	return words, nil
}
