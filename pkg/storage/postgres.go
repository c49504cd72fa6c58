package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresAdapter implements Adapter using PostgreSQL as the backing
// store. It expects a table shaped like:
//
//	CREATE TABLE kernel_storage (
//		key   TEXT PRIMARY KEY,
//		value TEXT NOT NULL
//	);
type PostgresAdapter struct {
	db *sql.DB
}

// NewPostgresAdapter wraps an existing *sql.DB. The caller owns the
// connection's lifecycle; tests can substitute a mock driver here.
func NewPostgresAdapter(db *sql.DB) *PostgresAdapter {
	return &PostgresAdapter{db: db}
}

func (s *PostgresAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT value FROM kernel_storage WHERE key = $1", key)

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: postgres get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresAdapter) Set(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO kernel_storage (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("storage: postgres set %q: %w", key, err)
	}
	return nil
}
