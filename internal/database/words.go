package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/utils"
)

var ErrNoWords = errors.New("NO_WORDS: words table is empty")

// WordStore serves word choices from the words table.
type WordStore struct {
	db *DB
}

// Remote marks the store as a network-backed word source.
func (*WordStore) Remote() {}

func NewWordStore(db *DB) *WordStore {
	return &WordStore{db: db}
}

// RandomWords returns up to n words, cycling through the difficulties so the
// drawer is offered a spread.
func (s *WordStore) RandomWords(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT word FROM (
			SELECT word, row_number() OVER (PARTITION BY difficulty ORDER BY random()) AS rn
			FROM words
		) ranked
		ORDER BY rn, random()
		LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan words: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}

// Import bulk-loads words, skipping any already present regardless of case.
// It returns how many rows were added.
func (s *WordStore) Import(ctx context.Context, words []internal.Word) (int64, error) {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `
		CREATE TEMP TABLE words_import (word TEXT, frequency INTEGER, difficulty TEXT)
		ON COMMIT DROP`); err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}

	rows := make([][]any, 0, len(words))
	for _, w := range words {
		d := w.Difficulty
		if d == "" {
			d = utils.DifficultyFor(w.Word)
		}
		rows = append(rows, []any{w.Word, w.Count, string(d)})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"words_import"}, []string{"word", "frequency", "difficulty"}, pgx.CopyFromRows(rows)); err != nil {
		return 0, fmt.Errorf("copy words: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO words (word, frequency, difficulty)
		SELECT DISTINCT ON (lower(word)) word, frequency, difficulty
		FROM words_import
		ORDER BY lower(word), frequency DESC
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("insert words: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *WordStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.pool.QueryRow(ctx, `SELECT count(*) FROM words`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count words: %w", err)
	}
	return n, nil
}
