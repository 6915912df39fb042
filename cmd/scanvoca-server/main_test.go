package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanvoca/scanvoca/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantDebug bool
		wantWarn  bool
	}{
		{name: "debug text", cfg: config.LogConfig{Level: "debug", Format: "text"}, wantDebug: true, wantWarn: true},
		{name: "warn json", cfg: config.LogConfig{Level: "warn", Format: "json"}, wantWarn: true},
		{name: "unknown level falls back to info", cfg: config.LogConfig{Level: "loud"}, wantWarn: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := newLogger(tt.cfg)
			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
			assert.Equal(t, tt.wantWarn, logger.Enabled(context.Background(), slog.LevelWarn))
		})
	}
}

func TestRun_configError(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	old := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = old })

	err := run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "loadConfig()")
}
