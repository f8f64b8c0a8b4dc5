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

type examRepository interface {
	List(ctx context.Context) ([]models.Exam, error)
	Get(ctx context.Context, id string) (*models.Exam, error)
}

type examAttemptWriter interface {
	InsertExamAttempts(ctx context.Context, userID, examID string, answers []models.ExamAnswer, at time.Time) error
}

// ExamService serves the practice exam catalog and records completed exams.
type ExamService struct {
	repo      examRepository
	attempts  examAttemptWriter
	refresher StatsRefresher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExamService constructs an exam service.
func NewExamService(repo examRepository, attempts examAttemptWriter, refresher StatsRefresher, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ExamService{
		repo:      repo,
		attempts:  attempts,
		refresher: refresher,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// ListExams returns the active practice exam catalog.
func (s *ExamService) ListExams(ctx context.Context) ([]models.Exam, error) {
	exams, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// SubmitExam stores one attempt row per answered question and triggers a
// best-effort stats refresh. A refresh failure never fails the submission.
func (s *ExamService) SubmitExam(ctx context.Context, userID string, req models.ExamSubmissionRequest) (*models.ExamSubmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam submission")
	}

	exam, err := s.repo.Get(ctx, req.ExamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch exam")
	}
	if !exam.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	if exam.QuestionCount > 0 && len(req.Answers) > exam.QuestionCount {
		return nil, appErrors.Clone(appErrors.ErrValidation, "more answers than exam questions")
	}

	correct := 0
	for _, answer := range req.Answers {
		if answer.Correct {
			correct++
		}
	}

	recordedAt := s.now().UTC()
	if err := s.attempts.InsertExamAttempts(ctx, userID, exam.ID, req.Answers, recordedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record exam attempt")
	}

	if s.refresher != nil {
		s.refresher.TriggerRefresh(userID)
	}

	return &models.ExamSubmissionResult{
		ExamID:         exam.ID,
		QuestionsSaved: len(req.Answers),
		CorrectTotal:   correct,
		RecordedAt:     recordedAt,
	}, nil
}
