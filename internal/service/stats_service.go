package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satlab/sat-prep-api/internal/models"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
	"github.com/satlab/sat-prep-api/pkg/jobs"
)

// ActivityRepository describes the authoritative activity reads the stats
// writer needs: per-topic quiz counters and the exam attempt count.
type ActivityRepository interface {
	TopicProgressForUser(ctx context.Context, userID string) ([]models.TopicProgress, error)
	ExamAttemptCount(ctx context.Context, userID string) (int, error)
}

// StatsCacheStore persists the materialized per-user snapshots.
type StatsCacheStore interface {
	Upsert(ctx context.Context, entry models.UserStatsCacheEntry) error
	Get(ctx context.Context, userID string) (*models.UserStatsCacheEntry, error)
	LoadAll(ctx context.Context) ([]models.UserStatsCacheEntry, error)
}

type identityRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// StatsService maintains the user_stats cache and computes rankings over
// it. Refreshing is cheap (one user's rows); ranking deliberately loads
// the whole cache once per query instead of fanning out work on every
// write.
type StatsService struct {
	activity ActivityRepository
	cache    StatsCacheStore
	users    identityRepository
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewStatsService constructs a stats service.
func NewStatsService(activity ActivityRepository, cache StatsCacheStore, users identityRepository, metrics *MetricsService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		activity: activity,
		cache:    cache,
		users:    users,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// RefreshUserStats recomputes one user's snapshot from the activity store
// and upserts it. A known user with no activity gets a zero-valued row;
// only an id unknown to the identity table is a NotFound.
func (s *StatsService) RefreshUserStats(ctx context.Context, userID string) (*models.UserStatsCacheEntry, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "check user identity")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown user id")
	}

	progress, err := s.activity.TopicProgressForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "read topic progress")
	}
	examCount, err := s.activity.ExamAttemptCount(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "count exam attempts")
	}

	var quizTotal, quizCorrect int
	for _, record := range progress {
		quizTotal += record.TotalQuestions
		quizCorrect += record.CorrectTotal
	}

	entry := models.UserStatsCacheEntry{
		UserID:         userID,
		TotalQuestions: quizTotal + examCount,
		Accuracy:       roundPercent(quizCorrect, quizTotal),
		LastUpdated:    s.now().UTC(),
	}

	if err := s.cache.Upsert(ctx, entry); err != nil {
		s.metrics.RecordStatsRefresh("error")
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "write stats cache")
	}

	s.metrics.RecordStatsRefresh("ok")
	return &entry, nil
}

// CachedStats reads a user's snapshot as stored, without recomputing. A
// known user whose snapshot was never materialized reads as a zero row.
func (s *StatsService) CachedStats(ctx context.Context, userID string) (*models.UserStatsCacheEntry, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "check user identity")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown user id")
	}

	entry, err := s.cache.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.UserStatsCacheEntry{UserID: userID}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "read stats cache")
	}
	return entry, nil
}

// ComputeRankings refreshes the caller's own snapshot, then places it
// within the full cached population along the volume and accuracy
// orderings. Other users' snapshots may be stale; the caller's never is,
// relative to their own activity at query time.
func (s *StatsService) ComputeRankings(ctx context.Context, userID string) (models.UserRankings, error) {
	if _, err := s.RefreshUserStats(ctx, userID); err != nil {
		return models.UserRankings{}, err
	}

	entries, err := s.cache.LoadAll(ctx)
	if err != nil {
		return models.UserRankings{}, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "load stats cache")
	}

	// Zero-activity users are excluded from ranking denominators.
	eligible := entries[:0:0]
	for _, entry := range entries {
		if entry.TotalQuestions > 0 {
			eligible = append(eligible, entry)
		}
	}

	degenerate := models.RankingResult{Position: 1, Percentile: 0, Total: len(eligible)}
	if len(eligible) <= 1 || !containsUser(eligible, userID) {
		return models.UserRankings{QuestionsRanking: degenerate, AccuracyRanking: degenerate}, nil
	}

	return models.UserRankings{
		QuestionsRanking: rankBy(eligible, userID, func(e models.UserStatsCacheEntry) int { return e.TotalQuestions }),
		AccuracyRanking:  rankBy(eligible, userID, func(e models.UserStatsCacheEntry) int { return e.Accuracy }),
	}, nil
}

// rankBy sorts descending by key and locates the user. The sort is stable
// over the load order, so exact ties keep an arbitrary but reproducible
// relative order.
func rankBy(eligible []models.UserStatsCacheEntry, userID string, key func(models.UserStatsCacheEntry) int) models.RankingResult {
	ranked := make([]models.UserStatsCacheEntry, len(eligible))
	copy(ranked, eligible)
	sort.SliceStable(ranked, func(i, j int) bool {
		return key(ranked[i]) > key(ranked[j])
	})

	total := len(ranked)
	position := 1
	for i, entry := range ranked {
		if entry.UserID == userID {
			position = i + 1
			break
		}
	}

	return models.RankingResult{
		Position:   position,
		Percentile: roundPercent(position, total),
		Total:      total,
	}
}

func containsUser(entries []models.UserStatsCacheEntry, userID string) bool {
	for _, entry := range entries {
		if entry.UserID == userID {
			return true
		}
	}
	return false
}

// roundPercent computes round-half-up(n/d*100), 0 for an empty denominator.
func roundPercent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Floor(float64(n)/float64(d)*100 + 0.5))
}

func validateUserID(userID string) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "malformed user id")
	}
	return nil
}

// StatsRefresher triggers a best-effort snapshot refresh after activity
// changes.
type StatsRefresher interface {
	TriggerRefresh(userID string)
}

// RefreshTriggerConfig tunes the refresh queue.
type RefreshTriggerConfig struct {
	RefreshTimeout time.Duration
	Workers        int
	BufferSize     int
	MaxRetries     int
}

// RefreshTrigger runs stats refreshes on a background queue. Enqueue
// failures and refresh failures are logged and swallowed: a missed
// refresh leaves the user's ranking stale until their next query, it
// never fails the submission that triggered it.
type RefreshTrigger struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewRefreshTrigger wires the queue around the stats service.
func NewRefreshTrigger(stats *StatsService, cfg RefreshTriggerConfig, logger *zap.Logger) *RefreshTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 5 * time.Second
	}

	t := &RefreshTrigger{logger: logger}
	handler := func(ctx context.Context, job jobs.Job) error {
		refreshCtx, cancel := context.WithTimeout(ctx, cfg.RefreshTimeout)
		defer cancel()

		_, err := stats.RefreshUserStats(refreshCtx, job.UserID)
		if err == nil {
			return nil
		}
		// Retrying cannot fix a bad or unknown id; drop those jobs.
		if errors.Is(err, appErrors.ErrNotFound) || errors.Is(err, appErrors.ErrValidation) {
			logger.Warn("dropping stats refresh", zap.String("user_id", job.UserID), zap.Error(err))
			return nil
		}
		return err
	}
	t.queue = jobs.NewQueue("stats-refresh", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return t
}

// Start launches the queue workers.
func (t *RefreshTrigger) Start(ctx context.Context) {
	t.queue.Start(ctx)
}

// Stop drains the queue workers.
func (t *RefreshTrigger) Stop() {
	t.queue.Stop()
}

// TriggerRefresh enqueues a refresh for the user. Best effort by
// contract: a full buffer or stopped queue is logged, never surfaced.
func (t *RefreshTrigger) TriggerRefresh(userID string) {
	job := jobs.Job{
		ID:     uuid.NewString(),
		Type:   "stats-refresh",
		UserID: userID,
	}
	if err := t.queue.Enqueue(job); err != nil {
		t.logger.Warn("failed to enqueue stats refresh", zap.String("user_id", userID), zap.Error(err))
	}
}
