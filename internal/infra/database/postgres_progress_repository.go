package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"writer_digest_bot/internal/domain/progress"
)

type PostgresProgressRepository struct {
	db *sql.DB
}

func NewPostgresProgressRepository(db *sql.DB) *PostgresProgressRepository {
	return &PostgresProgressRepository{db: db}
}

func (r *PostgresProgressRepository) AppendEntry(ctx context.Context, e *progress.Entry) error {
	query := `INSERT INTO progress_entries (logged_at, author_name, work_title, char_count)
               VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, e.LoggedAt, e.AuthorName, e.WorkTitle, e.CharCount); err != nil {
		return fmt.Errorf("error appending progress entry: %w", err)
	}
	return nil
}

// ListEntries returns entries in insertion order. Empty filter fields match all rows.
func (r *PostgresProgressRepository) ListEntries(ctx context.Context, filter progress.EntryFilter) ([]*progress.Entry, error) {
	query := `SELECT logged_at, author_name, work_title, char_count
               FROM progress_entries
               WHERE ($1::text = '' OR author_name = $1) AND ($2::text = '' OR work_title = $2)
               ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, filter.AuthorName, filter.WorkTitle)
	if err != nil {
		return nil, fmt.Errorf("error listing progress entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*progress.Entry, 0)
	for rows.Next() {
		e := &progress.Entry{}
		if err := rows.Scan(&e.LoggedAt, &e.AuthorName, &e.WorkTitle, &e.CharCount); err != nil {
			return nil, fmt.Errorf("error scanning progress entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress entries: %w", err)
	}
	return entries, nil
}

func (r *PostgresProgressRepository) AppendWork(ctx context.Context, w *progress.Work) error {
	query := `INSERT INTO works (title, theme, goal_count, deadline, status)
               VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, w.Title, w.Theme, w.GoalCount, w.Deadline, w.Status); err != nil {
		return fmt.Errorf("error appending work: %w", err)
	}
	return nil
}

func (r *PostgresProgressRepository) FindWork(ctx context.Context, title string) (*progress.Work, error) {
	query := `SELECT title, theme, goal_count, deadline, status
               FROM works WHERE title = $1 ORDER BY id LIMIT 1`
	w := &progress.Work{}
	err := r.db.QueryRowContext(ctx, query, title).Scan(&w.Title, &w.Theme, &w.GoalCount, &w.Deadline, &w.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, progress.ErrWorkNotFound
		}
		return nil, fmt.Errorf("error getting work by title: %w", err)
	}
	return w, nil
}
