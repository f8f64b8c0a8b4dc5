package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/satlab/sat-prep-api/internal/models"
)

// QuizRepository provides read access to the topic catalog.
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository creates a new instance of QuizRepository.
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// ListTopics returns active topics, optionally filtered by section.
func (r *QuizRepository) ListTopics(ctx context.Context, section models.Section) ([]models.Topic, error) {
	if section != "" {
		const query = `SELECT id, name, section, active, created_at FROM topics WHERE active = TRUE AND section = $1 ORDER BY name`
		var topics []models.Topic
		if err := r.db.SelectContext(ctx, &topics, query, section); err != nil {
			return nil, fmt.Errorf("list topics by section: %w", err)
		}
		return topics, nil
	}

	const query = `SELECT id, name, section, active, created_at FROM topics WHERE active = TRUE ORDER BY section, name`
	var topics []models.Topic
	if err := r.db.SelectContext(ctx, &topics, query); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// GetTopic returns one topic by id.
func (r *QuizRepository) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	const query = `SELECT id, name, section, active, created_at FROM topics WHERE id = $1 LIMIT 1`
	var topic models.Topic
	if err := r.db.GetContext(ctx, &topic, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return &topic, nil
}
