package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/satlab/sat-prep-api/internal/models"
)

// StatsRepository persists the materialized user_stats cache. Each row is
// derived data; the authoritative counters live in topic_progress and
// exam_attempts.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Upsert writes one user's snapshot. The statement touches only the owned
// columns so fields added to the row by other processes survive, and the
// single-statement upsert keeps concurrent refreshes of the same user
// last-write-wins without torn rows.
func (r *StatsRepository) Upsert(ctx context.Context, entry models.UserStatsCacheEntry) error {
	const query = `
        INSERT INTO user_stats (user_id, total_questions, accuracy, last_updated)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id) DO UPDATE
        SET total_questions = EXCLUDED.total_questions,
            accuracy = EXCLUDED.accuracy,
            last_updated = EXCLUDED.last_updated`
	if _, err := r.db.ExecContext(ctx, query, entry.UserID, entry.TotalQuestions, entry.Accuracy, entry.LastUpdated); err != nil {
		return fmt.Errorf("upsert user stats: %w", err)
	}
	return nil
}

// Get returns a single user's cached snapshot.
func (r *StatsRepository) Get(ctx context.Context, userID string) (*models.UserStatsCacheEntry, error) {
	const query = `SELECT user_id, total_questions, accuracy, last_updated FROM user_stats WHERE user_id = $1 LIMIT 1`
	var entry models.UserStatsCacheEntry
	if err := r.db.GetContext(ctx, &entry, query, userID); err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return &entry, nil
}

// LoadAll returns every cached snapshot. The fixed user_id order makes the
// stable sorts downstream reproducible across identical datasets.
func (r *StatsRepository) LoadAll(ctx context.Context) ([]models.UserStatsCacheEntry, error) {
	const query = `SELECT user_id, total_questions, accuracy, last_updated FROM user_stats ORDER BY user_id`
	var entries []models.UserStatsCacheEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("load user stats: %w", err)
	}
	return entries, nil
}
