package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/satlab/sat-prep-api/internal/models"
)

// ProgressRepository owns the per-user activity counters: topic_progress
// rows written by quiz submissions and exam_attempts rows written by exam
// submissions.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new instance of ProgressRepository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// TopicProgressForUser lists all topic counters for one user.
func (r *ProgressRepository) TopicProgressForUser(ctx context.Context, userID string) ([]models.TopicProgress, error) {
	const query = `SELECT user_id, topic_id, total_questions, correct_total, updated_at FROM topic_progress WHERE user_id = $1 ORDER BY topic_id`
	var records []models.TopicProgress
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("list topic progress: %w", err)
	}
	return records, nil
}

// ExamAttemptCount counts answered exam questions for one user.
func (r *ProgressRepository) ExamAttemptCount(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM exam_attempts WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count exam attempts: %w", err)
	}
	return count, nil
}

// IncrementTopicProgress adds a finished quiz run to the user's counter
// for the topic, creating the row on first contact.
func (r *ProgressRepository) IncrementTopicProgress(ctx context.Context, userID, topicID string, total, correct int, at time.Time) error {
	const query = `
        INSERT INTO topic_progress (user_id, topic_id, total_questions, correct_total, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id, topic_id) DO UPDATE
        SET total_questions = topic_progress.total_questions + EXCLUDED.total_questions,
            correct_total = topic_progress.correct_total + EXCLUDED.correct_total,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userID, topicID, total, correct, at); err != nil {
		return fmt.Errorf("increment topic progress: %w", err)
	}
	return nil
}

// InsertExamAttempts stores one attempt row per answered exam question
// inside a single transaction.
func (r *ProgressRepository) InsertExamAttempts(ctx context.Context, userID, examID string, answers []models.ExamAnswer, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin exam attempts tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `
        INSERT INTO exam_attempts (id, user_id, exam_id, question_id, correct, answered_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	for _, answer := range answers {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), userID, examID, answer.QuestionID, answer.Correct, at); err != nil {
			return fmt.Errorf("insert exam attempt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit exam attempts: %w", err)
	}
	return nil
}
