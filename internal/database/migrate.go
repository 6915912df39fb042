package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/scanvoca/scanvoca/internal/config"
	"github.com/scanvoca/scanvoca/schemas"
)

var gooseDialects = map[string]goose.Dialect{
	config.DriverMySQL:    goose.DialectMySQL,
	config.DriverPostgres: goose.DialectPostgres,
	config.DriverSQLite3:  goose.DialectSQLite3,
}

// MigrationFS returns the embedded migrations of a driver.
func MigrationFS(driver string) (fs.FS, error) {
	if _, ok := gooseDialects[driver]; !ok {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	fsys, err := fs.Sub(schemas.Migrations, path.Join("migrations", driver))
	if err != nil {
		return nil, fmt.Errorf("fs.Sub(%s) > %w", driver, err)
	}
	return fsys, nil
}

// Migrate applies all pending migrations of the configured driver.
func Migrate(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) error {
	db, err := openSQL(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	return MigrateDB(ctx, db, cfg.Driver, logger)
}

// MigrateDB applies all pending migrations of driver on db.
func MigrateDB(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) error {
	fsys, err := MigrationFS(driver)
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(gooseDialects[driver], db, fsys)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		logger.Info("applied migration",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration,
		)
	}
	if len(results) == 0 {
		logger.Info("database is up to date", "driver", driver)
	}
	return nil
}

func openSQL(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.Driver == config.DriverPostgres {
		db, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database connection: %w", err)
		}
		return db, nil
	}
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return db.DB, nil
}
