package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewResolveCommand(t *testing.T) {
	cmd := newResolveCommand()

	assert.Equal(t, "resolve [words...]", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	outputFlag := cmd.Flags().Lookup("output")
	assert.NotNil(t, outputFlag)
	assert.Equal(t, "text", outputFlag.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("file"))
}

func TestNewImportCommand(t *testing.T) {
	cmd := newImportCommand()

	assert.Equal(t, "import <wordbook>", cmd.Use)
	assert.Equal(t, "Import a JSON or YAML wordbook into the database", cmd.Short)

	dryRunFlag := cmd.Flags().Lookup("dry-run")
	assert.NotNil(t, dryRunFlag)
	assert.Equal(t, "false", dryRunFlag.DefValue)

	batchSizeFlag := cmd.Flags().Lookup("batch-size")
	assert.NotNil(t, batchSizeFlag)
	assert.Equal(t, "100", batchSizeFlag.DefValue)
}

func TestNewStatsCommand(t *testing.T) {
	cmd := newStatsCommand()

	assert.Equal(t, "stats", cmd.Use)
	assert.Equal(t, "Show word statistics", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}

func TestNewMigrateCommand(t *testing.T) {
	cmd := newMigrateCommand()

	assert.Equal(t, "migrate", cmd.Use)
	assert.Equal(t, "Apply database migrations", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}

func TestCommands_RunE_configError(t *testing.T) {
	cfgPath := setupBrokenConfigFile(t)
	setConfigFile(t, cfgPath)

	tests := []struct {
		name string
		cmd  func() *cobra.Command
		args []string
	}{
		{name: "resolve", cmd: newResolveCommand, args: []string{"apple"}},
		{name: "import", cmd: newImportCommand, args: []string{"wordbook.json"}},
		{name: "stats", cmd: newStatsCommand},
		{name: "migrate", cmd: newMigrateCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.cmd()
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "load config")
		})
	}
}

func TestNewResolveCommand_RunE_noWords(t *testing.T) {
	cmd := newResolveCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.EqualError(t, err, "no words given")
}

func TestOutputFormat_Set(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    OutputFormat
		wantErr bool
	}{
		{name: "text", value: "text", want: OutputText},
		{name: "json", value: "json", want: OutputJSON},
		{name: "yaml", value: "yaml", want: OutputYAML},
		{name: "invalid", value: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f OutputFormat
			err := f.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid output format")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.value, f.String())
			assert.Equal(t, "OutputFormat", f.Type())
		})
	}
}
