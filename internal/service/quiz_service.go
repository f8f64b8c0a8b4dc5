package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/satlab/sat-prep-api/internal/models"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
)

type quizRepository interface {
	ListTopics(ctx context.Context, section models.Section) ([]models.Topic, error)
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
}

type quizProgressWriter interface {
	IncrementTopicProgress(ctx context.Context, userID, topicID string, total, correct int, at time.Time) error
}

// QuizService serves the topic catalog and records finished quiz runs.
type QuizService struct {
	repo      quizRepository
	progress  quizProgressWriter
	refresher StatsRefresher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuizService constructs a quiz service.
func NewQuizService(repo quizRepository, progress quizProgressWriter, refresher StatsRefresher, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &QuizService{
		repo:      repo,
		progress:  progress,
		refresher: refresher,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// ListTopics returns the active topic catalog, optionally filtered by section.
func (s *QuizService) ListTopics(ctx context.Context, section models.Section) ([]models.Topic, error) {
	if section != "" {
		switch section {
		case models.SectionMath, models.SectionReading, models.SectionWriting:
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown section")
		}
	}
	topics, err := s.repo.ListTopics(ctx, section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list topics")
	}
	return topics, nil
}

// SubmitQuiz records one completed quiz run against the user's topic
// counters, then triggers a best-effort stats refresh. The refresh never
// affects the submission outcome.
func (s *QuizService) SubmitQuiz(ctx context.Context, userID string, req models.QuizSubmissionRequest) (*models.QuizSubmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz submission")
	}

	topic, err := s.repo.GetTopic(ctx, req.TopicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch topic")
	}
	if !topic.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
	}

	total := len(req.Answers)
	correct := 0
	for _, answer := range req.Answers {
		if answer.Correct {
			correct++
		}
	}

	recordedAt := s.now().UTC()
	if err := s.progress.IncrementTopicProgress(ctx, userID, topic.ID, total, correct, recordedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record quiz run")
	}

	if s.refresher != nil {
		s.refresher.TriggerRefresh(userID)
	}

	return &models.QuizSubmissionResult{
		TopicID:        topic.ID,
		TotalQuestions: total,
		CorrectTotal:   correct,
		RecordedAt:     recordedAt,
	}, nil
}
