package dictionary

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanvoca/scanvoca/internal/config"
	"github.com/scanvoca/scanvoca/internal/database"
)

func TestDBRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite3,
		Path:   filepath.Join(t.TempDir(), "words.db"),
	}
	require.NoError(t, database.Migrate(ctx, cfg, slog.Default()))

	db, err := database.Open(cfg)
	require.NoError(t, err)
	defer db.Close()
	repo := NewDBRepository(db)

	meanings := Meanings{{PartOfSpeech: "noun", Korean: "고양이", Examples: []Example{{EN: "A cat.", KO: "고양이."}}}}
	inserted, err := repo.InsertMany(ctx, []Record{
		{Word: "cat", Pronunciation: ptr("kæt"), Difficulty: ptr(1), Meanings: meanings, Origin: OriginGenerated, UsageCount: 1},
		{Word: "dog", Meanings: meanings, Origin: OriginImported},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.Equal(t, "cat", inserted[0].Word)
	assert.NotZero(t, inserted[0].ID)
	assert.Equal(t, meanings, inserted[0].Meanings)
	assert.Equal(t, ptr("kæt"), inserted[0].Pronunciation)
	assert.Nil(t, inserted[1].Pronunciation)

	_, err = repo.InsertMany(ctx, []Record{
		{Word: "owl", Meanings: meanings, Origin: OriginGenerated, UsageCount: 1},
		{Word: "cat", Meanings: meanings, Origin: OriginGenerated, UsageCount: 1},
	})
	require.ErrorIs(t, err, ErrDuplicateKey)

	got, err := repo.GetMany(ctx, []string{"owl", "cat", "dog"})
	require.NoError(t, err)
	assert.Len(t, got, 2, "failed batch must not leave owl behind")

	require.NoError(t, repo.IncrementUsage(ctx, []string{"cat", "dog"}))
	got, err = repo.GetMany(ctx, []string{"cat"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].UsageCount)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalWords: 2, GeneratedWords: 1, ImportedWords: 1, TotalUsage: 3}, stats)
}
