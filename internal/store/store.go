// Package store opens the word repository selected by configuration.
package store

import (
	"context"
	"fmt"

	"github.com/scanvoca/scanvoca/internal/config"
	"github.com/scanvoca/scanvoca/internal/database"
	"github.com/scanvoca/scanvoca/internal/dictionary"
	"github.com/scanvoca/scanvoca/internal/dictionary/postgres"
)

// Open connects to the configured database and returns its repository with a
// function that releases the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (dictionary.Repository, func() error, error) {
	if cfg.Driver == config.DriverPostgres {
		pool, err := database.OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("database.OpenPostgres() > %w", err)
		}
		return postgres.New(pool), func() error {
			pool.Close()
			return nil
		}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	return dictionary.NewDBRepository(db), db.Close, nil
}
