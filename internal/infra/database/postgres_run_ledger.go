package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"writer_digest_bot/internal/domain/digest"
)

// PostgresRunLedger stores one row per calendar day a digest was claimed.
type PostgresRunLedger struct {
	db *sql.DB
}

func NewPostgresRunLedger(db *sql.DB) *PostgresRunLedger {
	return &PostgresRunLedger{db: db}
}

func (l *PostgresRunLedger) Claim(ctx context.Context, day time.Time, runID string) (bool, error) {
	query := `INSERT INTO digest_runs (run_date, run_id) VALUES ($1, $2)
               ON CONFLICT (run_date) DO NOTHING`
	res, err := l.db.ExecContext(ctx, query, digest.DayKey(day), runID)
	if err != nil {
		return false, fmt.Errorf("error claiming digest run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading claimed rows: %w", err)
	}
	return n == 1, nil
}
