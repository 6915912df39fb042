package resolver

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/scanvoca/scanvoca/internal/cache"
	"github.com/scanvoca/scanvoca/internal/config"
	"github.com/scanvoca/scanvoca/internal/database"
	"github.com/scanvoca/scanvoca/internal/dictionary"
	mock_inference "github.com/scanvoca/scanvoca/internal/mocks/inference"
)

func TestResolver_Resolve_ConcurrentBatchesStoreOnce(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver:       config.DriverSQLite3,
		Path:         filepath.Join(t.TempDir(), "words.db"),
		MaxOpenConns: 1,
	}
	require.NoError(t, database.Migrate(ctx, cfg, discardLogger))
	db, err := database.Open(cfg)
	require.NoError(t, err)
	defer db.Close()
	repo := dictionary.NewDBRepository(db)

	// Both batches must miss the store before either one inserts.
	var arrived sync.WaitGroup
	arrived.Add(2)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()

	ctrl := gomock.NewController(t)
	gen := mock_inference.NewMockGenerator(ctrl)
	gen.EXPECT().Generate(gomock.Any(), "quokka").Times(2).DoAndReturn(
		func(_ context.Context, word string) (dictionary.Record, error) {
			arrived.Done()
			select {
			case <-release:
				return generated(word), nil
			case <-time.After(5 * time.Second):
				return dictionary.Record{}, errors.New("other batch never reached generation")
			}
		})

	r := New(cache.Unavailable{}, repo, gen, WithLogger(discardLogger))

	batches := make([]Batch, 2)
	var wg sync.WaitGroup
	for i := range batches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batches[i] = r.Resolve(ctx, []string{"Quokka"})
		}()
	}
	wg.Wait()
	r.Wait()

	var sources []string
	for _, batch := range batches {
		require.Len(t, batch.Outcomes, 1)
		outcome := batch.Outcomes[0]
		assert.Empty(t, outcome.Error)
		require.NotNil(t, outcome.Record)
		assert.Equal(t, "quokka", outcome.Record.Word)
		sources = append(sources, string(outcome.Source))
	}
	sort.Strings(sources)
	assert.Equal(t, []string{string(SourceGenerated), string(SourceStore)}, sources)
	assert.Equal(t, batches[0].Outcomes[0].Record.ID, batches[1].Outcomes[0].Record.ID)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalWords)
	assert.Equal(t, int64(2), stats.TotalUsage, "the store hit counts one more use")
}
