package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/scanvoca/scanvoca/internal/database"
)

//go:generate mockgen -source=repository.go -destination=../mocks/dictionary/mock_repository.go -package=mock_dictionary

// Repository is the persistent store of word records.
type Repository interface {
	// GetMany returns the records that exist for keys. Missing keys are omitted.
	GetMany(ctx context.Context, keys []string) ([]Record, error)
	// InsertMany creates all records or none of them and returns them with their identity.
	InsertMany(ctx context.Context, records []Record) ([]Record, error)
	IncrementUsage(ctx context.Context, keys []string) error
	Stats(ctx context.Context) (Stats, error)
}

const (
	selectColumns = "id, word, pronunciation, difficulty, meanings, origin, usage_count, created_at, updated_at"

	statsQuery = `SELECT
	COUNT(*) AS total_words,
	COALESCE(SUM(CASE WHEN origin = 'generated' THEN 1 ELSE 0 END), 0) AS generated_words,
	COALESCE(SUM(CASE WHEN origin = 'imported' THEN 1 ELSE 0 END), 0) AS imported_words,
	COALESCE(SUM(CASE WHEN origin = 'manual' THEN 1 ELSE 0 END), 0) AS manual_words,
	COALESCE(SUM(usage_count), 0) AS total_usage
FROM words`
)

var insertColumns = []string{"word", "pronunciation", "difficulty", "meanings", "origin", "usage_count", "created_at", "updated_at"}

// DBRepository implements Repository on MySQL or SQLite.
type DBRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db, now: time.Now}
}

// GetMany loads the records for keys in one query.
func (r *DBRepository) GetMany(ctx context.Context, keys []string) ([]Record, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	return r.selectByWords(ctx, r.db, keys)
}

// InsertMany inserts records in a single transaction and reads them back.
func (r *DBRepository) InsertMany(ctx context.Context, records []Record) ([]Record, error) {
	if len(records) == 0 {
		return nil, nil
	}

	now := r.now().UTC().Truncate(time.Second)
	keys := make([]string, len(records))
	args := make([]any, 0, len(records)*len(insertColumns))
	for i, rec := range records {
		keys[i] = rec.Word
		args = append(args, rec.Word, rec.Pronunciation, rec.Difficulty, rec.Meanings, rec.Origin, rec.UsageCount, now, now)
	}

	var inserted []Record
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query := database.BuildMultiRowInsert("words", insertColumns, len(records))
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("insert words: %w: %w", ErrDuplicateKey, err)
			}
			return fmt.Errorf("insert words: %w: %w", ErrStore, err)
		}

		found, err := r.selectByWords(ctx, tx, keys)
		if err != nil {
			return err
		}
		inserted = orderByWords(found, keys)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) || errors.Is(err, ErrStore) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return inserted, nil
}

// IncrementUsage bumps usage_count of every key by one in a single statement.
func (r *DBRepository) IncrementUsage(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In("UPDATE words SET usage_count = usage_count + 1, updated_at = ? WHERE word IN (?)", r.now().UTC().Truncate(time.Second), keys)
	if err != nil {
		return fmt.Errorf("build usage update query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// Stats aggregates counts over all stored words.
func (r *DBRepository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := r.db.GetContext(ctx, &stats, statsQuery); err != nil {
		return Stats{}, fmt.Errorf("load word stats: %w", err)
	}
	return stats, nil
}

func (r *DBRepository) selectByWords(ctx context.Context, q sqlx.ExtContext, keys []string) ([]Record, error) {
	query, args, err := sqlx.In("SELECT "+selectColumns+" FROM words WHERE word IN (?)", keys)
	if err != nil {
		return nil, fmt.Errorf("build words query: %w", err)
	}
	var records []Record
	if err := sqlx.SelectContext(ctx, q, &records, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	return records, nil
}

// orderByWords returns records in the order of keys.
func orderByWords(records []Record, keys []string) []Record {
	byWord := make(map[string]Record, len(records))
	for _, rec := range records {
		byWord[rec.Word] = rec
	}
	ordered := make([]Record, 0, len(keys))
	for _, k := range keys {
		if rec, ok := byWord[k]; ok {
			ordered = append(ordered, rec)
		}
	}
	return ordered
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	// go-sqlite3 only exports its error type when built with cgo.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
