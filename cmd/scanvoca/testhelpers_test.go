package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setConfigFile sets the global configFile variable and registers a cleanup to restore it.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	return cfgPath
}

// setupSQLiteConfigFile writes a config pointing at a fresh SQLite database in tmpDir.
func setupSQLiteConfigFile(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	content := fmt.Sprintf(`database:
  driver: sqlite3
  path: %s
cache:
  driver: none
generation:
  provider: openai
`, filepath.Join(tmpDir, "scanvoca.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath
}
