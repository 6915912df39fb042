package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanvoca/scanvoca/internal/config"
	"github.com/scanvoca/scanvoca/internal/database"
	"github.com/scanvoca/scanvoca/internal/dictionary"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite3, Path: filepath.Join(t.TempDir(), "words.db")}
	require.NoError(t, database.Migrate(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil))))

	repo, closeFn, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, closeFn())
	}()
	assert.IsType(t, &dictionary.DBRepository{}, repo)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalWords)
}

func TestOpen_PostgresInvalidDSN(t *testing.T) {
	_, _, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverPostgres, DSN: "://bad"})
	assert.Error(t, err)
}
